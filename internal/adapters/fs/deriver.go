// Package fs fingerprints dependency manifests on the local filesystem.
package fs

import (
	_ "crypto/sha256" // registers digest.SHA256
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/opencontainers/go-digest"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.KeyDeriver = (*Deriver)(nil)

// manifestPriority lists the manifests consulted, most exact first.
var manifestPriority = []string{
	domain.LockManifestName,
	domain.DeclarativeManifestName,
}

// Deriver computes cache keys from the sha256 digest of a project's manifest.
type Deriver struct {
	platform string
}

// NewDeriver creates a Deriver for the platform the process runs on.
func NewDeriver() *Deriver {
	return &Deriver{platform: runtime.GOOS}
}

// NewDeriverForPlatform creates a Deriver that keys caches for platform.
func NewDeriverForPlatform(platform string) *Deriver {
	return &Deriver{platform: platform}
}

// Derive locates the manifest of projectDir and builds its cache key.
// Returns nil, nil if neither manifest exists.
func (d *Deriver) Derive(projectDir, suffix string) (*domain.CacheKey, error) {
	manifest, err := locateManifest(projectDir)
	if err != nil || manifest == "" {
		return nil, err
	}

	fingerprint, err := fingerprintFile(manifest)
	if err != nil {
		return nil, err
	}

	return &domain.CacheKey{
		Namespace:   domain.KeyNamespace,
		Platform:    d.platform,
		Fingerprint: fingerprint,
		Suffix:      suffix,
		Manifest:    manifest,
	}, nil
}

// locateManifest returns the first manifest of manifestPriority present in dir,
// or "" when there is none.
func locateManifest(dir string) (string, error) {
	for _, name := range manifestPriority {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
		}
	}
	return "", nil
}

// fingerprintFile returns the hex sha256 digest of the file's raw bytes.
func fingerprintFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	dgst, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}

	return dgst.Encoded(), nil
}
