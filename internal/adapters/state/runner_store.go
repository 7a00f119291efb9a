package state

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StateStore = (*RunnerStore)(nil)

// runnerStatePrefix is prepended to a state name by the runner when it exposes
// the value to the post step.
const runnerStatePrefix = "STATE_"

// RunnerStore implements ports.StateStore with the CI runner's state file protocol.
//
// Set appends "name=value" to the state command file; the runner hands the
// value to the post step of the same action as the STATE_<name> variable.
type RunnerStore struct {
	file   string
	getenv func(string) string
}

// NewRunnerStore creates a store appending to the runner state file.
func NewRunnerStore(file string, getenv func(string) string) *RunnerStore {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &RunnerStore{file: file, getenv: getenv}
}

// Get returns the value the runner exposes for name.
func (s *RunnerStore) Get(name string) (string, error) {
	return s.getenv(runnerStatePrefix + name), nil
}

// Set appends a state command for name.
func (s *RunnerStore) Set(name, value string) error {
	if name == "" || strings.ContainsAny(name, "=\r\n") {
		return zerr.With(domain.ErrInvalidStateName, "name", name)
	}

	cmd, err := formatCommand(name, value)
	if err != nil {
		return err
	}

	//nolint:gosec // The runner owns the state file path
	f, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, domain.PrivateFilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()), "path", s.file)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if _, err := f.WriteString(cmd); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()), "path", s.file)
	}
	return nil
}

// Clear is a no-op. The runner starts every job with empty state and a
// value can only be overwritten, not removed.
func (s *RunnerStore) Clear() error {
	return nil
}

// formatCommand renders a single-line command, or a delimited block for
// multi-line values.
func formatCommand(name, value string) (string, error) {
	if !strings.ContainsAny(value, "\r\n") {
		return name + "=" + value + "\n", nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", zerr.Wrap(err, domain.ErrStateWriteFailed.Error())
	}
	delim := "ghadelimiter_" + hex.EncodeToString(buf)

	return name + "<<" + delim + "\n" + value + "\n" + delim + "\n", nil
}
