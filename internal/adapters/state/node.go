package state

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/buildcache/internal/adapters/config"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
)

// NodeID is the unique identifier for the state store Graft node.
const NodeID graft.ID = "adapter.state_store"

func init() {
	graft.Register(graft.Node[ports.StateStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.StateStore, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return New(settings.State, os.Getenv), nil
		},
	})
}

// New selects the store for the given settings.
//
// The runner state protocol is only used when asked for and the runner
// provides its state file. Everything else gets a FileStore, at the
// configured path or a job-scoped temp file.
func New(s domain.StateSettings, getenv func(string) string) ports.StateStore {
	if s.Mode == domain.StateModeRunner && s.RunnerFile != "" {
		return NewRunnerStore(s.RunnerFile, getenv)
	}
	if s.File != "" {
		return NewFileStore(s.File)
	}
	return NewFileStore(DefaultPath(getenv))
}

// DefaultPath returns the state file used when nothing is configured.
// Inside a runner job the file lives in the job's temp directory and is
// named after the run and job, so concurrent jobs on one machine do not share it.
func DefaultPath(getenv func(string) string) string {
	if tmp := getenv("RUNNER_TEMP"); tmp != "" {
		name := "buildcache-" + getenv("GITHUB_RUN_ID") + "-" + getenv("GITHUB_JOB") + ".state.json"
		return filepath.Join(tmp, name)
	}
	return filepath.Join(os.TempDir(), domain.StateFileName)
}
