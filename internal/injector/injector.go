//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/reveries/internal/command"
	"github.com/zeusync/reveries/internal/config"
	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/plugin"
)

func InitializeReveries(info command.Info, cfg config.Config, h host.Host) (*plugin.Reveries, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
