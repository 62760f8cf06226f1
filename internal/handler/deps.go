package handler

import (
	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
)

// AppDeps bundles the services the HTTP layer depends on.
type AppDeps struct {
	Broker   *chat.Broker
	Config   *configs.AppConfig
	Users    *user.Service
	Messages *message.Log
}
