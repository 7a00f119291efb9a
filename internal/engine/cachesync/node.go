package cachesync

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/buildcache/internal/adapters/blobcache" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/buildcache/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/buildcache/internal/adapters/state"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/buildcache/internal/core/ports"
)

const (
	// RestorerNodeID is the unique identifier for the restorer Graft node.
	RestorerNodeID graft.ID = "engine.cachesync.restorer"
	// SaverNodeID is the unique identifier for the saver Graft node.
	SaverNodeID graft.ID = "engine.cachesync.saver"
	// BridgeNodeID is the unique identifier for the state bridge Graft node.
	BridgeNodeID graft.ID = "engine.cachesync.bridge"
)

func init() {
	graft.Register(graft.Node[*Restorer]{
		ID:        RestorerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{blobcache.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Restorer, error) {
			cache, log, err := cacheDeps(ctx)
			if err != nil {
				return nil, err
			}
			return NewRestorer(cache, log), nil
		},
	})

	graft.Register(graft.Node[*Saver]{
		ID:        SaverNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{blobcache.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Saver, error) {
			cache, log, err := cacheDeps(ctx)
			if err != nil {
				return nil, err
			}
			return NewSaver(cache, log), nil
		},
	})

	graft.Register(graft.Node[*Bridge]{
		ID:        BridgeNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{state.NodeID},
		Run: func(ctx context.Context) (*Bridge, error) {
			store, err := graft.Dep[ports.StateStore](ctx)
			if err != nil {
				return nil, err
			}
			return NewBridge(store), nil
		},
	})
}

func cacheDeps(ctx context.Context) (ports.CacheService, ports.Logger, error) {
	cache, err := graft.Dep[ports.CacheService](ctx)
	if err != nil {
		return nil, nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, nil, err
	}
	return cache, log, nil
}
