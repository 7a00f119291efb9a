package domain

import (
	"strconv"

	"go.trai.ch/zerr"
)

var (
	// ErrMissingPath is returned when the project path input is empty.
	ErrMissingPath = zerr.New("input required and not supplied: path")

	// ErrBuildToolNotInstalled is returned when the build tool binary cannot be found on PATH.
	ErrBuildToolNotInstalled = zerr.New("build tool is not installed")

	// ErrBuildStartFailed is returned when the build tool process cannot be started.
	ErrBuildStartFailed = zerr.New("failed to start build tool")

	// ErrBuildFailed is returned when the build tool exits with a non-zero code.
	ErrBuildFailed = zerr.New("build failed")

	// ErrCacheDirQueryFailed is returned when the dependency cache directory cannot be determined.
	ErrCacheDirQueryFailed = zerr.New("could not determine dependency cache directory")

	// ErrManifestReadFailed is returned when a manifest file exists but cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnknownBackend is returned when the configured cache backend is not supported.
	ErrUnknownBackend = zerr.New("unknown cache backend, expected 'local', 's3' or 'none'")

	// ErrUnknownLogFormat is returned when the configured log format is not supported.
	ErrUnknownLogFormat = zerr.New("unknown log format, expected 'pretty' or 'json'")

	// ErrUnknownStateMode is returned when the configured state mode is not supported.
	ErrUnknownStateMode = zerr.New("unknown state mode, expected 'file' or 'runner'")

	// ErrStateReadFailed is returned when the job state record cannot be read.
	ErrStateReadFailed = zerr.New("failed to read job state")

	// ErrStateWriteFailed is returned when the job state record cannot be written.
	ErrStateWriteFailed = zerr.New("failed to write job state")

	// ErrStateUnmarshalFailed is returned when the job state record is corrupt.
	ErrStateUnmarshalFailed = zerr.New("failed to unmarshal job state")

	// ErrInvalidStateName is returned when a state entry name cannot be encoded.
	ErrInvalidStateName = zerr.New("invalid state entry name")

	// ErrArchiveCreateFailed is returned when a cache archive cannot be written.
	ErrArchiveCreateFailed = zerr.New("failed to create cache archive")

	// ErrArchiveExtractFailed is returned when a cache archive cannot be extracted.
	ErrArchiveExtractFailed = zerr.New("failed to extract cache archive")

	// ErrArchiveInvalidEntry is returned when an archive entry escapes its target directory.
	ErrArchiveInvalidEntry = zerr.New("invalid cache archive entry")

	// ErrCacheLockFailed is returned when the local cache lock cannot be acquired.
	ErrCacheLockFailed = zerr.New("failed to lock local cache")

	// ErrCacheReadFailed is returned when a cache entry cannot be read from the backend.
	ErrCacheReadFailed = zerr.New("failed to read cache entry")

	// ErrCacheWriteFailed is returned when a cache entry cannot be written to the backend.
	ErrCacheWriteFailed = zerr.New("failed to write cache entry")

	// ErrCacheMetadataCorrupt is returned when cache entry metadata cannot be decoded.
	ErrCacheMetadataCorrupt = zerr.New("cache entry metadata is corrupt")

	// ErrCachePathMissing is returned when a directory to be saved does not exist.
	ErrCachePathMissing = zerr.New("cache path does not exist")
)

// BuildFailure reports a build tool run that finished with a non-zero exit code.
// It matches ErrBuildFailed with errors.Is so callers can treat it like the sentinel
// while still recovering the exit code with errors.As.
type BuildFailure struct {
	Tool     string
	ExitCode int
}

// Error implements the error interface.
func (e *BuildFailure) Error() string {
	return e.Tool + " exited with code " + strconv.Itoa(e.ExitCode)
}

// Is reports whether target is ErrBuildFailed.
func (e *BuildFailure) Is(target error) bool {
	return target == ErrBuildFailed
}
