/*
Package handler provides the HTTP handlers and routing setup for the lobby chat server.

This file defines the main Router, applying logging, CORS and recovery middleware before
delegating to the WebSocket endpoint, the JSON API and the static asset server.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"lobbychat/internal/pkg/logx"
	"lobbychat/internal/pkg/resp"
)

// Router sets up the HTTP routing table for the application.
// Avatar routes are mounted only when object storage is configured; otherwise avatars
// are plain files under the static directory.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := deps.Config.AllowedOrigins
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, map[string]any{
			"status":      "ok",
			"service":     "lobbychat",
			"connections": deps.Manager.Len(),
		})
	})

	r.Get("/ws", HandleWebSocket(deps.Manager, wsUpgrader))

	r.Route("/api", func(api chi.Router) {
		api.Get("/online", HandleOnline(deps.Manager))

		if deps.Storage != nil {
			api.Post("/avatars", HandleUploadAvatar(deps.Storage))
		}
	})

	if deps.Storage != nil {
		r.Get("/avatars/{ref}", HandleAvatarRedirect(deps.Storage))
	}

	r.Handle("/*", http.FileServer(http.Dir(deps.Config.StaticDir)))

	return r
}
