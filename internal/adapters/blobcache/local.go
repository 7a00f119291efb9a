// Package blobcache implements the cache service that stores dependency
// directories as compressed archives.
package blobcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"go.trai.ch/buildcache/internal/adapters/archive"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheService = (*Local)(nil)

const (
	entriesDir    = "entries"
	lockFile      = ".lock"
	metadataExt   = ".json"
	lockRetryWait = 50 * time.Millisecond
)

// entryMetadata is written next to each archive once the archive is complete.
type entryMetadata struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Local implements ports.CacheService in a directory on the runner.
//
// Each entry is an archive named after the xxhash of its key plus a metadata
// file. The metadata is written last, so an entry without metadata does not exist.
// Writers hold an exclusive file lock, readers a shared one.
type Local struct {
	dir string
	now func() time.Time
}

// NewLocal creates a Local cache rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: filepath.Clean(dir), now: time.Now}
}

// WithClock replaces the clock used for entry creation times. Used for testing.
func (l *Local) WithClock(now func() time.Time) *Local {
	l.now = now
	return l
}

// Available reports whether the cache directory exists or can be created.
func (l *Local) Available(_ context.Context) bool {
	return os.MkdirAll(filepath.Join(l.dir, entriesDir), domain.DirPerm) == nil
}

// Restore extracts the entry for key, or the newest entry matching a fallback prefix.
func (l *Local) Restore(ctx context.Context, paths []string, key string, fallbackPrefixes []string) (string, error) {
	unlock, err := l.lock(ctx, false)
	if err != nil {
		return "", err
	}
	defer unlock()

	meta, err := l.readMetadata(entryName(key))
	if err != nil {
		return "", err
	}

	if meta == nil {
		for _, prefix := range fallbackPrefixes {
			meta, err = l.newestWithPrefix(prefix)
			if err != nil {
				return "", err
			}
			if meta != nil {
				break
			}
		}
	}

	if meta == nil {
		return "", nil
	}

	if err := l.extract(meta.Key, paths); err != nil {
		return "", err
	}
	return meta.Key, nil
}

// Save archives paths under key unless an entry for key already exists.
func (l *Local) Save(ctx context.Context, paths []string, key string) (domain.SaveResult, error) {
	unlock, err := l.lock(ctx, true)
	if err != nil {
		return domain.SaveResultError, err
	}
	defer unlock()

	name := entryName(key)
	existing, err := l.readMetadata(name)
	if err != nil {
		return domain.SaveResultError, err
	}
	if existing != nil {
		return domain.SaveResultAlreadyExists, nil
	}

	size, err := l.writeArchive(name, paths)
	if err != nil {
		return domain.SaveResultError, err
	}

	data, err := json.MarshalIndent(entryMetadata{Key: key, Size: size, CreatedAt: l.now().UTC()}, "", "  ")
	if err != nil {
		return domain.SaveResultError, zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	metaPath := filepath.Join(l.dir, entriesDir, name+metadataExt)
	if err := renameio.WriteFile(metaPath, data, domain.FilePerm); err != nil {
		return domain.SaveResultError, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", metaPath)
	}

	return domain.SaveResultSaved, nil
}

func (l *Local) writeArchive(name string, paths []string) (int64, error) {
	archivePath := filepath.Join(l.dir, entriesDir, name+archive.Extension)

	pf, err := renameio.NewPendingFile(archivePath, renameio.WithPermissions(domain.FilePerm))
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", archivePath)
	}
	defer pf.Cleanup() //nolint:errcheck // no-op after a successful replace

	if err := archive.Pack(pf, paths); err != nil {
		return 0, err
	}

	info, err := pf.Stat()
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", archivePath)
	}

	if err := pf.CloseAtomicallyReplace(); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", archivePath)
	}
	return info.Size(), nil
}

func (l *Local) extract(key string, paths []string) error {
	archivePath := filepath.Join(l.dir, entriesDir, entryName(key)+archive.Extension)

	f, err := os.Open(archivePath) //nolint:gosec // Path is derived from the cache directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", archivePath)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	return archive.Unpack(f, paths)
}

// readMetadata returns nil, nil if the entry does not exist.
func (l *Local) readMetadata(name string) (*entryMetadata, error) {
	path := filepath.Join(l.dir, entriesDir, name+metadataExt)

	//nolint:gosec // Path is derived from the cache directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", path)
	}

	var meta entryMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheMetadataCorrupt.Error()), "path", path)
	}
	return &meta, nil
}

// newestWithPrefix returns the most recently created entry whose key starts with prefix.
// Entries with unreadable metadata are ignored.
func (l *Local) newestWithPrefix(prefix string) (*entryMetadata, error) {
	dirEntries, err := os.ReadDir(filepath.Join(l.dir, entriesDir))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}

	var newest *entryMetadata
	for _, de := range dirEntries {
		name, ok := strings.CutSuffix(de.Name(), metadataExt)
		if !ok || de.IsDir() {
			continue
		}
		meta, err := l.readMetadata(name)
		if err != nil || meta == nil {
			continue
		}
		if !strings.HasPrefix(meta.Key, prefix) {
			continue
		}
		if newest == nil || meta.CreatedAt.After(newest.CreatedAt) {
			newest = meta
		}
	}
	return newest, nil
}

// lock acquires the cache directory lock and returns its release function.
func (l *Local) lock(ctx context.Context, exclusive bool) (func(), error) {
	if err := os.MkdirAll(filepath.Join(l.dir, entriesDir), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheLockFailed.Error()), "path", l.dir)
	}

	fl := flock.New(filepath.Join(l.dir, lockFile), flock.SetPermissions(domain.FilePerm))

	var ok bool
	var err error
	if exclusive {
		ok, err = fl.TryLockContext(ctx, lockRetryWait)
	} else {
		ok, err = fl.TryRLockContext(ctx, lockRetryWait)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheLockFailed.Error()), "path", fl.Path())
	}
	if !ok {
		return nil, zerr.With(domain.ErrCacheLockFailed, "path", fl.Path())
	}

	return func() { _ = fl.Unlock() }, nil
}

// entryName maps a key to a fixed-length file name.
func entryName(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}
