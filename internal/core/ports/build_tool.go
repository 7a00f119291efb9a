package ports

import (
	"context"
	"io"
)

// BuildTool defines the wrapped project build tool and its dependency manager.
//
//go:generate go run go.uber.org/mock/mockgen -source=build_tool.go -destination=mocks/mock_build_tool.go -package=mocks
type BuildTool interface {
	// Name returns the executable name of the build tool.
	Name() string

	// CheckInstalled returns domain.ErrBuildToolNotInstalled when the build
	// tool cannot be found.
	CheckInstalled(ctx context.Context) error

	// CacheDir queries the dependency manager configured for projectDir for
	// its download cache directory.
	CacheDir(ctx context.Context, projectDir string) (string, error)

	// RunCI runs the CI build of projectDir and returns the process exit code.
	RunCI(ctx context.Context, projectDir string, stdout, stderr io.Writer) (int, error)
}
