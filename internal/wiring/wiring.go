// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/buildcache/internal/adapters/blobcache"
	_ "go.trai.ch/buildcache/internal/adapters/buildtool"
	_ "go.trai.ch/buildcache/internal/adapters/config"
	_ "go.trai.ch/buildcache/internal/adapters/fs"
	_ "go.trai.ch/buildcache/internal/adapters/logger"
	_ "go.trai.ch/buildcache/internal/adapters/metrics"
	_ "go.trai.ch/buildcache/internal/adapters/shell"
	_ "go.trai.ch/buildcache/internal/adapters/state"
	// Register app and engine nodes.
	_ "go.trai.ch/buildcache/internal/app"
	_ "go.trai.ch/buildcache/internal/engine/cachesync"
)
