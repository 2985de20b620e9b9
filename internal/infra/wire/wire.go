//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"github.com/uniedit/orgauth/internal/shared/config"
)

// InitializeDependencies creates all dependencies using Wire.
func InitializeDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	wire.Build(
		AppSet,
		wire.Struct(new(Dependencies), "*"),
	)
	return nil, nil, nil
}
