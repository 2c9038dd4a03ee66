//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"linkboard/internal/config"
	"linkboard/internal/server"

	"github.com/go-kratos/kratos/v2"
	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init kratos application.
func wireApp(*config.Config, *zap.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		providerSet,
		newApp,
	))
}
