package domain

import (
	"os"
	"path/filepath"
)

const (
	// LockManifestName is the locked manifest holding exact resolved versions.
	LockManifestName = "composer.lock"

	// DeclarativeManifestName is the declarative manifest holding version ranges.
	DeclarativeManifestName = "composer.json"

	// KeyNamespace is the fixed prefix of every cache key.
	KeyNamespace = "composer"

	// ConfigFileName is the optional configuration file read from the working directory.
	ConfigFileName = "buildcache.yaml"

	// AppDirName is the directory name used below the user cache directory.
	AppDirName = "buildcache"

	// StateFileName is the default name of the job state record.
	StateFileName = "buildcache.state.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultLocalCachePath returns the directory used by the local cache backend
// when none is configured.
func DefaultLocalCachePath() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, AppDirName)
}
