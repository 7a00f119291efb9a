package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/buildcache/internal/adapters/buildtool" //nolint:depguard // Wired in app layer
	"go.trai.ch/buildcache/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/buildcache/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/buildcache/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/buildcache/internal/engine/cachesync"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			buildtool.NodeID,
			fs.DeriverNodeID,
			cachesync.RestorerNodeID,
			cachesync.SaverNodeID,
			cachesync.BridgeNodeID,
			logger.NodeID,
			metrics.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	tool, err := graft.Dep[ports.BuildTool](ctx)
	if err != nil {
		return nil, err
	}

	deriver, err := graft.Dep[ports.KeyDeriver](ctx)
	if err != nil {
		return nil, err
	}

	restorer, err := graft.Dep[*cachesync.Restorer](ctx)
	if err != nil {
		return nil, err
	}

	saver, err := graft.Dep[*cachesync.Saver](ctx)
	if err != nil {
		return nil, err
	}

	bridge, err := graft.Dep[*cachesync.Bridge](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	m, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	return New(tool, deriver, restorer, saver, bridge, log, m), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    app,
		Logger: log,
	}, nil
}
