package app

import (
	"mcpanel/internal/proxy"
	"mcpanel/internal/storage"
	"mcpanel/pkg/sdk"
)

type Container struct {
	Backend *sdk.Client
	Store   *storage.GormStore
	Relay   *proxy.Relay
	WSProxy *proxy.WSProxy
}
