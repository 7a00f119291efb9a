// Package shell provides the process executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// stderrTailLimit bounds how much captured stderr is attached to an error.
const stderrTailLimit = 2048

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger  ports.Logger
	environ func() []string
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger:  logger,
		environ: os.Environ,
	}
}

// LookPath resolves name against the PATH of the current environment.
// Names containing a path separator are checked as given.
func (e *Executor) LookPath(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) || filepath.IsAbs(name) {
		if err := findExecutable(name); err != nil {
			return "", zerr.With(zerr.Wrap(err, exec.ErrNotFound.Error()), "name", name)
		}
		return name, nil
	}

	path, err := lookPath(name, e.environ())
	if err != nil {
		return "", zerr.With(err, "name", name)
	}
	return path, nil
}

// Output runs the command and returns its standard output.
func (e *Executor) Output(ctx context.Context, c domain.Command) (string, error) {
	var stdout, stderr bytes.Buffer

	code, err := e.Run(ctx, c, &stdout, &stderr)
	if err != nil {
		return "", err
	}
	if code != 0 {
		err := zerr.With(zerr.New("command failed"), "exit_code", code)
		err = zerr.With(err, "command", c.String())
		if tail := tailOf(stderr.String()); tail != "" {
			err = zerr.With(err, "stderr", tail)
		}
		return "", err
	}

	return stdout.String(), nil
}

// Run runs the command streaming its output, and returns the exit code.
func (e *Executor) Run(ctx context.Context, c domain.Command, stdout, stderr io.Writer) (int, error) {
	if c.Name == "" {
		return -1, zerr.New("empty command")
	}

	env := e.environ()

	executable := c.Name
	if !filepath.IsAbs(c.Name) && !strings.ContainsRune(c.Name, filepath.Separator) {
		if lp, err := lookPath(c.Name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, c.Args...) //nolint:gosec // user provided command

	// exec.CommandContext sets Args[0] to the executable path; keep the name as invoked.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = c.Name
	}

	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	e.logger.Debug("running " + c.String())

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}

	// Not started, or terminated by a signal.
	return -1, zerr.With(zerr.Wrap(err, "command failed"), "command", c.String())
}

// tailOf returns the trimmed end of s, at most stderrTailLimit bytes.
func tailOf(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTailLimit {
		s = s[len(s)-stderrTailLimit:]
	}
	return s
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
