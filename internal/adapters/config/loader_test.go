package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/buildcache/internal/adapters/config"
	"go.trai.ch/buildcache/internal/core/domain"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o600))
}

func TestLoader_Defaults(t *testing.T) {
	dir := t.TempDir()

	settings, err := config.NewLoader().WithEnv(envMap(nil)).Load(dir)
	require.NoError(t, err)

	want := domain.DefaultSettings()
	assert.Equal(t, &want, settings)
}

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
backend: s3
s3:
  bucket: ci-cache
  prefix: shop/
  region: eu-central-1
  endpoint: http://minio:9000
  pathStyle: true
state:
  mode: runner
  file: /tmp/state.yaml
tool:
  binary: /opt/bin/shopware-cli
log:
  format: json
  debug: true
`)

	settings, err := config.NewLoader().WithEnv(envMap(nil)).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.BackendS3, settings.Backend)
	assert.Equal(t, domain.S3Settings{
		Bucket:    "ci-cache",
		Prefix:    "shop/",
		Region:    "eu-central-1",
		Endpoint:  "http://minio:9000",
		PathStyle: true,
	}, settings.S3)
	assert.Equal(t, "/tmp/state.yaml", settings.State.File)
	assert.Equal(t, domain.StateModeRunner, settings.State.Mode)
	assert.Equal(t, "/opt/bin/shopware-cli", settings.Tool.Binary)
	assert.Equal(t, "composer", settings.Tool.Composer, "unset fields keep their default")
	assert.Equal(t, domain.LogFormatJSON, settings.Log.Format)
	assert.True(t, settings.Log.Debug)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: s3\ns3:\n  bucket: from-file\n")

	settings, err := config.NewLoader().WithEnv(envMap(map[string]string{
		config.EnvBackend:     "local",
		config.EnvLocalDir:    "/var/cache/buildcache",
		config.EnvS3Bucket:    "from-env",
		config.EnvS3PathStyle: "1",
		config.EnvComposer:    "composer2",
	})).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.BackendLocal, settings.Backend)
	assert.Equal(t, "/var/cache/buildcache", settings.Local.Dir)
	assert.Equal(t, "from-env", settings.S3.Bucket)
	assert.True(t, settings.S3.PathStyle)
	assert.Equal(t, "composer2", settings.Tool.Composer)
}

func TestLoader_RunnerEnvironment(t *testing.T) {
	settings, err := config.NewLoader().WithEnv(envMap(map[string]string{
		config.EnvRunnerAction: "true",
		config.EnvRunnerDebug:  "1",
		config.EnvRunnerState:  "/home/runner/work/_temp/_runner_file_commands/save_state_1",
	})).Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, settings.Log.Groups)
	assert.True(t, settings.Log.Debug)
	assert.Equal(t, "/home/runner/work/_temp/_runner_file_commands/save_state_1", settings.State.RunnerFile)
	assert.Equal(t, domain.StateModeFile, settings.State.Mode, "the runner state file alone does not switch modes")
}

func TestLoader_StateModeFromEnv(t *testing.T) {
	settings, err := config.NewLoader().WithEnv(envMap(map[string]string{
		config.EnvStateMode: "runner",
	})).Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, domain.StateModeRunner, settings.State.Mode)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "malformed yaml",
			file:    "backend: [unclosed",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "unknown backend",
			file:    "backend: ftp",
			wantErr: domain.ErrUnknownBackend,
		},
		{
			name:    "unknown log format",
			env:     map[string]string{config.EnvLogFormat: "xml"},
			wantErr: domain.ErrUnknownLogFormat,
		},
		{
			name:    "unknown state mode",
			file:    "state:\n  mode: cookie",
			wantErr: domain.ErrUnknownStateMode,
		},
		{
			name:    "invalid boolean",
			env:     map[string]string{config.EnvDebug: "maybe"},
			wantErr: domain.ErrConfigParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeConfig(t, dir, tt.file)
			}

			_, err := config.NewLoader().WithEnv(envMap(tt.env)).Load(dir)
			require.Error(t, err)
			require.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestLoader_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the file cannot be read.
	require.NoError(t, os.Mkdir(filepath.Join(dir, domain.ConfigFileName), 0o750))

	_, err := config.NewLoader().WithEnv(envMap(nil)).Load(dir)
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
}
