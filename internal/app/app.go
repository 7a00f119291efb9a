// Package app implements the application layer for buildcache.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/buildcache/internal/engine/cachesync"
)

const (
	stageCacheDir = "cache-dir"
	stageDerive   = "derive-key"
	stageRestore  = "restore"
	stageBuild    = "build"
	stageSave     = "save"
)

// Options are the job inputs of a phase.
type Options struct {
	// Path is the project directory.
	Path string
	// Suffix is the optional cache key disambiguation value.
	Suffix string
	// Stdout and Stderr receive the build tool output. Nil means os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// App represents the main application logic.
type App struct {
	tool     ports.BuildTool
	deriver  ports.KeyDeriver
	restorer *cachesync.Restorer
	saver    *cachesync.Saver
	bridge   *cachesync.Bridge
	logger   ports.Logger
	metrics  ports.Metrics
}

// New creates a new App instance.
func New(
	tool ports.BuildTool,
	deriver ports.KeyDeriver,
	restorer *cachesync.Restorer,
	saver *cachesync.Saver,
	bridge *cachesync.Bridge,
	logger ports.Logger,
	m ports.Metrics,
) *App {
	return &App{
		tool:     tool,
		deriver:  deriver,
		restorer: restorer,
		saver:    saver,
		bridge:   bridge,
		logger:   logger,
		metrics:  m,
	}
}

// Pre runs the pre-build phase: restore the dependency cache, record state
// for the post-build phase, then run the CI build.
//
// Only a missing input, a missing build tool or the build itself can fail
// the phase. A non-zero build exit is returned as *domain.BuildFailure.
func (a *App) Pre(ctx context.Context, opts Options) error {
	// A record left by an earlier job on this machine must not reach Post.
	if err := a.bridge.Clear(); err != nil {
		a.logger.Warn("Could not clear previous cache state: " + err.Error())
	}

	if opts.Path == "" {
		return domain.ErrMissingPath
	}

	if err := a.tool.CheckInstalled(ctx); err != nil {
		return err
	}

	defer a.logTimings()

	a.prepareCache(ctx, opts)

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	var (
		code int
		err  error
	)
	a.timed(stageBuild, func() {
		code, err = a.tool.RunCI(ctx, opts.Path, stdout, stderr)
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &domain.BuildFailure{Tool: a.tool.Name(), ExitCode: code}
	}

	return nil
}

// prepareCache restores the dependency cache and records the state.
// Every failure here degrades to a build without cache.
func (a *App) prepareCache(ctx context.Context, opts Options) {
	end := a.logger.Group("Restoring composer cache")
	defer end()

	var (
		dir string
		err error
	)
	a.timed(stageCacheDir, func() {
		dir, err = a.tool.CacheDir(ctx, opts.Path)
	})
	if err != nil {
		a.logger.Info("Could not determine composer cache directory, skipping cache")
		a.logger.Debug(err.Error())
		return
	}
	a.logger.Debug("Composer cache directory: " + dir)

	var key *domain.CacheKey
	a.timed(stageDerive, func() {
		key, err = a.deriver.Derive(opts.Path, opts.Suffix)
	})
	if err != nil {
		a.logger.Warn("Could not compute cache key, skipping cache: " + err.Error())
		return
	}
	if key == nil {
		a.logger.Info("No composer.lock or composer.json found, skipping cache")
		return
	}
	a.logger.Debug(fmt.Sprintf("Using %s for cache key: %s", filepath.Base(key.Manifest), key))

	a.timed(stageRestore, func() {
		a.restorer.Restore(ctx, dir, *key)
	})

	if err := a.bridge.Write(domain.CacheState{Dir: dir, Key: key.String()}); err != nil {
		a.logger.Warn("Could not record cache state, the cache will not be saved: " + err.Error())
	}
}

// Post runs the post-build phase: save the dependency cache recorded by Pre.
// It never fails; every problem is logged.
func (a *App) Post(ctx context.Context) {
	end := a.logger.Group("Saving composer cache")
	defer end()
	defer a.logTimings()

	state, err := a.bridge.Read()
	if clearErr := a.bridge.Clear(); clearErr != nil {
		a.logger.Debug("Could not clear cache state: " + clearErr.Error())
	}
	if err != nil {
		a.logger.Info("Post-action failed: " + err.Error())
		return
	}

	if state.Empty() {
		a.logger.Info("No composer cache to save")
		return
	}

	a.timed(stageSave, func() {
		a.saver.Save(ctx, state)
	})
}

// Key derives the cache key for opts without touching the cache or the build.
// It returns nil when the project has no manifest.
func (a *App) Key(opts Options) (*domain.CacheKey, error) {
	if opts.Path == "" {
		return nil, domain.ErrMissingPath
	}
	return a.deriver.Derive(opts.Path, opts.Suffix)
}

// timed runs fn and records its duration under stage.
func (a *App) timed(stage string, fn func()) {
	start := time.Now()
	fn()
	a.metrics.Observe(stage, time.Since(start))
}

func (a *App) logTimings() {
	for _, t := range a.metrics.Snapshot() {
		a.logger.Debug(fmt.Sprintf("%s took %s (n=%d, p50=%s, p99=%s)", t.Stage, t.Total, t.Count, t.P50, t.P99))
	}
}
