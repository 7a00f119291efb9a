package ports

import "go.trai.ch/buildcache/internal/core/domain"

// ConfigLoader defines the interface for loading the runtime settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the optional configuration file from the given working
	// directory, applies environment overrides and returns the settings.
	Load(cwd string) (*domain.Settings, error)
}
