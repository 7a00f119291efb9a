package fs_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/buildcache/internal/adapters/fs"
)

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestDeriver_LockManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.lock", "X")

	key, err := fs.NewDeriverForPlatform("linux").Derive(dir, "")
	require.NoError(t, err)
	require.NotNil(t, key)

	assert.Equal(t, "composer-linux-"+sha256Hex([]byte("X")), key.String())
	assert.Equal(t, filepath.Join(dir, "composer.lock"), key.Manifest)
	assert.Equal(t, "composer-linux-", key.FallbackPrefix())
}

func TestDeriver_PrefersLockManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.lock", "locked")
	writeFile(t, dir, "composer.json", "declared")

	key, err := fs.NewDeriverForPlatform("linux").Derive(dir, "")
	require.NoError(t, err)
	require.NotNil(t, key)

	assert.Equal(t, sha256Hex([]byte("locked")), key.Fingerprint)
	assert.Equal(t, filepath.Join(dir, "composer.lock"), key.Manifest)
}

func TestDeriver_DeclarativeFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.json", `{"require":{}}`)

	key, err := fs.NewDeriverForPlatform("darwin").Derive(dir, "php8.3")
	require.NoError(t, err)
	require.NotNil(t, key)

	assert.Equal(t, "composer-darwin-"+sha256Hex([]byte(`{"require":{}}`))+"-php8.3", key.String())
	assert.Equal(t, filepath.Join(dir, "composer.json"), key.Manifest)
}

func TestDeriver_NoManifest(t *testing.T) {
	key, err := fs.NewDeriver().Derive(t.TempDir(), "suffix")
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestDeriver_ManifestDirectoryIsSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "composer.lock"), 0o750))
	writeFile(t, dir, "composer.json", "declared")

	key, err := fs.NewDeriverForPlatform("linux").Derive(dir, "")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, sha256Hex([]byte("declared")), key.Fingerprint)
}

func TestDeriver_Deterministic(t *testing.T) {
	contents := []string{"", "X", "{\n  \"packages\": []\n}\n", string(make([]byte, 1<<16))}
	suffixes := []string{"", "php8.2", "a-b"}

	for _, content := range contents {
		for _, suffix := range suffixes {
			first := t.TempDir()
			second := t.TempDir()
			writeFile(t, first, "composer.lock", content)
			writeFile(t, second, "composer.lock", content)

			d := fs.NewDeriverForPlatform("linux")
			a, err := d.Derive(first, suffix)
			require.NoError(t, err)
			b, err := d.Derive(second, suffix)
			require.NoError(t, err)

			assert.Equal(t, a.String(), b.String(), "same bytes must yield the same key")
		}
	}
}

func TestDeriver_SuffixChangesKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.lock", "X")
	d := fs.NewDeriverForPlatform("linux")

	base, err := d.Derive(dir, "")
	require.NoError(t, err)

	for _, suffix := range []string{"1", "php8.3", "node20"} {
		withSuffix, err := d.Derive(dir, suffix)
		require.NoError(t, err)
		assert.NotEqual(t, base.String(), withSuffix.String())
	}
}

func TestDeriver_DefaultPlatform(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.lock", "X")

	key, err := fs.NewDeriver().Derive(dir, "")
	require.NoError(t, err)
	assert.Equal(t, runtime.GOOS, key.Platform)
}
