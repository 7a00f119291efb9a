package state_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/buildcache/internal/adapters/state"
	"go.trai.ch/buildcache/internal/core/domain"
)

func TestNew_SelectsStore(t *testing.T) {
	noEnv := func(string) string { return "" }

	explicit := state.New(domain.StateSettings{Mode: domain.StateModeFile, File: "/tmp/x.json", RunnerFile: "/tmp/runner"}, noEnv)
	fileStore, ok := explicit.(*state.FileStore)
	require.True(t, ok)
	assert.Equal(t, "/tmp/x.json", fileStore.Path())

	runner := state.New(domain.StateSettings{Mode: domain.StateModeRunner, RunnerFile: "/tmp/runner"}, noEnv)
	assert.IsType(t, &state.RunnerStore{}, runner)

	fallback := state.New(domain.StateSettings{}, noEnv)
	assert.IsType(t, &state.FileStore{}, fallback)
}

func TestNew_RunnerStateFileAloneUsesFileStore(t *testing.T) {
	env := map[string]string{
		"RUNNER_TEMP":   "/runner/tmp",
		"GITHUB_RUN_ID": "42",
		"GITHUB_JOB":    "build",
	}
	getenv := func(k string) string { return env[k] }

	store := state.New(domain.StateSettings{Mode: domain.StateModeFile, RunnerFile: "/runner/state"}, getenv)

	fileStore, ok := store.(*state.FileStore)
	require.True(t, ok, "plain run steps cannot receive runner state, so the file store is used")
	assert.Equal(t, filepath.Join("/runner/tmp", "buildcache-42-build.state.json"), fileStore.Path())
}

func TestNew_RunnerModeWithoutStateFileFallsBack(t *testing.T) {
	store := state.New(domain.StateSettings{Mode: domain.StateModeRunner}, func(string) string { return "" })
	assert.IsType(t, &state.FileStore{}, store)
}

func TestDefaultPath(t *testing.T) {
	env := map[string]string{
		"RUNNER_TEMP":   "/runner/tmp",
		"GITHUB_RUN_ID": "42",
		"GITHUB_JOB":    "build",
	}

	got := state.DefaultPath(func(k string) string { return env[k] })
	assert.Equal(t, filepath.Join("/runner/tmp", "buildcache-42-build.state.json"), got)

	got = state.DefaultPath(func(string) string { return "" })
	assert.Equal(t, domain.StateFileName, filepath.Base(got))
}
