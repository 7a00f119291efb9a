// Package buildtool adapts the project build tool and its dependency manager.
package buildtool

import (
	"context"
	"io"
	"strings"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildTool = (*ShopwareCLI)(nil)

// InstallHint tells the user how to provide the build tool in a workflow.
const InstallHint = "install it first using the official action: " +
	"https://github.com/shopware/shopware-cli-action " +
	"(- uses: shopware/shopware-cli-action@v1)"

// ShopwareCLI implements ports.BuildTool by invoking the build tool and the
// dependency manager through an Executor.
type ShopwareCLI struct {
	exec     ports.Executor
	binary   string
	composer string
}

// New creates a ShopwareCLI for the configured binaries.
func New(exec ports.Executor, tool domain.ToolSettings) *ShopwareCLI {
	return &ShopwareCLI{
		exec:     exec,
		binary:   tool.Binary,
		composer: tool.Composer,
	}
}

// Name returns the build tool binary name.
func (s *ShopwareCLI) Name() string {
	return s.binary
}

// CheckInstalled reports ErrBuildToolNotInstalled when the binary is not on PATH.
func (s *ShopwareCLI) CheckInstalled(_ context.Context) error {
	if _, err := s.exec.LookPath(s.binary); err != nil {
		notInstalled := zerr.With(domain.ErrBuildToolNotInstalled, "tool", s.binary)
		return zerr.With(notInstalled, "hint", InstallHint)
	}
	return nil
}

// CacheDir asks the dependency manager for its download cache directory.
func (s *ShopwareCLI) CacheDir(ctx context.Context, projectDir string) (string, error) {
	out, err := s.exec.Output(ctx, domain.Command{
		Name: s.composer,
		Args: []string{"config", "cache-files-dir"},
		Dir:  projectDir,
	})
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrCacheDirQueryFailed.Error()), "dir", projectDir)
	}

	dir := strings.TrimSpace(out)
	if dir == "" {
		return "", zerr.With(domain.ErrCacheDirQueryFailed, "dir", projectDir)
	}
	return dir, nil
}

// RunCI runs "<binary> project ci <projectDir>" and returns its exit code.
func (s *ShopwareCLI) RunCI(ctx context.Context, projectDir string, stdout, stderr io.Writer) (int, error) {
	code, err := s.exec.Run(ctx, domain.Command{
		Name: s.binary,
		Args: []string{"project", "ci", projectDir},
	}, stdout, stderr)
	if err != nil {
		return code, zerr.With(zerr.Wrap(err, domain.ErrBuildStartFailed.Error()), "tool", s.binary)
	}
	return code, nil
}
