package ports

import (
	"context"
	"io"

	"go.trai.ch/buildcache/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// LookPath resolves name against the PATH of the current environment.
	LookPath(name string) (string, error)

	// Output runs the command and returns its standard output.
	// A non-zero exit is reported as an error carrying the exit code.
	Output(ctx context.Context, cmd domain.Command) (string, error)

	// Run runs the command streaming its output to stdout and stderr.
	//
	// It returns the exit code of the process. The error is non-nil only when
	// the process could not be started or waited for; a non-zero exit code
	// alone is not an error.
	Run(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) (int, error)
}
