package handler

import (
	"net/http"

	"lobbychat/internal/app/chat"
	"lobbychat/internal/pkg/resp"
)

// OnlineResponse lists who is connected right now.
type OnlineResponse struct {
	// Count is the number of live connections, logged in or not.
	Count int `json:"count"`

	// Users holds the logged-in connections in connection order.
	Users []chat.Presence `json:"users"`
}

// HandleOnline reports the registry's current occupants.
func HandleOnline(manager *chat.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		registry := manager.Hub().Registry()

		resp.RespondSuccess(w, OnlineResponse{
			Count: registry.Len(),
			Users: registry.Snapshot(),
		})
	}
}
