// Package archive packs cache directories into zstd-compressed tar streams and
// extracts them again.
//
// Entry names are prefixed with the index of the directory they came from
// ("0/", "1/", ...) so that one archive can carry several directories.
package archive

import (
	"archive/tar"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Extension is the file extension of cache archives.
const Extension = ".tar.zst"

// Pack writes the contents of dirs to w.
// Regular files and directories are archived; other file types are skipped.
func Pack(w io.Writer, dirs []string) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
	}
	tw := tar.NewWriter(enc)

	for i, dir := range dirs {
		if err := packDir(tw, strconv.Itoa(i), dir); err != nil {
			_ = tw.Close()
			_ = enc.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		_ = enc.Close()
		return zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
	}
	if err := enc.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
	}
	return nil
}

func packDir(tw *tar.Writer, prefix, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(domain.ErrCachePathMissing, "path", dir)
		}
		return zerr.With(zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error()), "path", dir)
	}
	if !info.IsDir() {
		return zerr.With(zerr.New("cache path is not a directory"), "path", dir)
	}

	return filepath.WalkDir(dir, func(p string, d iofs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return zerr.With(zerr.Wrap(walkErr, domain.ErrArchiveCreateFailed.Error()), "path", p)
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error())
		}

		fi, err := d.Info()
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error()), "path", p)
		}

		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error()), "path", p)
		}
		hdr.Name = path.Join(prefix, filepath.ToSlash(rel))
		if d.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uname, hdr.Gname = "", ""
		hdr.Uid, hdr.Gid = 0, 0

		if err := tw.WriteHeader(hdr); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error()), "path", p)
		}
		if d.IsDir() {
			return nil
		}
		return copyFile(tw, p)
	})
}

func copyFile(w io.Writer, p string) error {
	f, err := os.Open(p) //nolint:gosec // Path comes from walking the cache directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error()), "path", p)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if _, err := io.Copy(w, f); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArchiveCreateFailed.Error()), "path", p)
	}
	return nil
}

// Unpack extracts an archive written by Pack into dirs.
//
// Entries for directory index i are written below dirs[i], which is created if
// needed. Extraction goes through os.Root, so no entry can escape its directory.
func Unpack(r io.Reader, dirs []string) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error())
	}
	defer dec.Close()

	roots := make([]*os.Root, len(dirs))
	defer func() {
		for _, root := range roots {
			if root != nil {
				_ = root.Close()
			}
		}
	}()

	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error())
		}

		idx, rel, err := splitName(hdr.Name, len(dirs))
		if err != nil {
			return err
		}

		if roots[idx] == nil {
			if err := os.MkdirAll(dirs[idx], domain.DirPerm); err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error()), "path", dirs[idx])
			}
			root, err := os.OpenRoot(dirs[idx])
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error()), "path", dirs[idx])
			}
			roots[idx] = root
		}

		if err := extractEntry(roots[idx], hdr, rel, tr); err != nil {
			return err
		}
	}
}

// splitName parses "<index>/<relative path>".
// The bare "<index>/" entry yields rel ".".
func splitName(name string, count int) (int, string, error) {
	prefix, rel, _ := strings.Cut(name, "/")
	idx, err := strconv.Atoi(prefix)
	if err != nil || idx < 0 || idx >= count {
		return 0, "", zerr.With(domain.ErrArchiveInvalidEntry, "name", name)
	}

	rel = strings.TrimSuffix(rel, "/")
	if rel == "" {
		return idx, ".", nil
	}
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return 0, "", zerr.With(domain.ErrArchiveInvalidEntry, "name", name)
	}
	return idx, local, nil
}

func extractEntry(root *os.Root, hdr *tar.Header, rel string, r io.Reader) error {
	switch hdr.Typeflag {
	case tar.TypeDir:
		if rel == "." {
			return nil
		}
		if err := root.MkdirAll(rel, domain.DirPerm); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error()), "name", hdr.Name)
		}
		return nil
	case tar.TypeReg:
		if dir := filepath.Dir(rel); dir != "." {
			if err := root.MkdirAll(dir, domain.DirPerm); err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error()), "name", hdr.Name)
			}
		}
		perm := iofs.FileMode(hdr.Mode).Perm() | 0o200 //nolint:gosec // mode bits come from the archive header
		f, err := root.OpenFile(rel, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error()), "name", hdr.Name)
		}
		_, copyErr := io.Copy(f, r)
		closeErr := f.Close()
		if err := errors.Join(copyErr, closeErr); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrArchiveExtractFailed.Error()), "name", hdr.Name)
		}
		return nil
	default:
		return nil
	}
}
