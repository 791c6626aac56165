package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks is the lifecycle handed to app.Run by cmd/stratasite.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "stratasite",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
