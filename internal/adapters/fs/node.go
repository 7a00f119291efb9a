package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/buildcache/internal/core/ports"
)

// DeriverNodeID is the unique identifier for the key deriver Graft node.
const DeriverNodeID graft.ID = "adapter.fs.deriver"

func init() {
	graft.Register(graft.Node[ports.KeyDeriver]{
		ID:        DeriverNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.KeyDeriver, error) {
			return NewDeriver(), nil
		},
	})
}
