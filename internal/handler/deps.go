package handler

import (
	"lobbychat/internal/app/chat"
	"lobbychat/internal/app/storage"
	"lobbychat/internal/configs"
)

// AppDeps bundles what the HTTP handlers need.
type AppDeps struct {
	Manager *chat.Manager
	Config  *configs.AppConfig

	// Storage is nil when avatar object storage is not configured.
	Storage storage.StorageService
}
