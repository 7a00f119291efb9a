// Package config loads the runtime settings from buildcache.yaml and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment variables read by the loader.
const (
	EnvBackend      = "BUILDCACHE_BACKEND"
	EnvLocalDir     = "BUILDCACHE_LOCAL_DIR"
	EnvS3Bucket     = "BUILDCACHE_S3_BUCKET"
	EnvS3Prefix     = "BUILDCACHE_S3_PREFIX"
	EnvS3Region     = "BUILDCACHE_S3_REGION"
	EnvS3Endpoint   = "BUILDCACHE_S3_ENDPOINT"
	EnvS3PathStyle  = "BUILDCACHE_S3_PATH_STYLE"
	EnvStateMode    = "BUILDCACHE_STATE_MODE"
	EnvStateFile    = "BUILDCACHE_STATE_FILE"
	EnvTool         = "BUILDCACHE_TOOL"
	EnvComposer     = "BUILDCACHE_COMPOSER"
	EnvLogFormat    = "BUILDCACHE_LOG_FORMAT"
	EnvDebug        = "BUILDCACHE_DEBUG"
	EnvRunnerDebug  = "RUNNER_DEBUG"
	EnvRunnerState  = "GITHUB_STATE"
	EnvRunnerAction = "GITHUB_ACTIONS"
)

// Loader implements ports.ConfigLoader.
type Loader struct {
	Filename string
	getenv   func(string) string
}

// NewLoader creates a Loader reading domain.ConfigFileName and the process environment.
func NewLoader() *Loader {
	return &Loader{
		Filename: domain.ConfigFileName,
		getenv:   os.Getenv,
	}
}

// WithEnv replaces the environment lookup. Used for testing.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// Load reads the optional configuration file in cwd and applies environment overrides.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	file, err := readFile(filepath.Join(cwd, l.Filename))
	if err != nil {
		return nil, err
	}
	if file != nil {
		applyFile(&settings, file)
	}

	if err := l.applyEnv(&settings); err != nil {
		return nil, err
	}

	if err := validate(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// readFile returns nil, nil when the file does not exist.
func readFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the working directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	return &file, nil
}

func applyFile(s *domain.Settings, f *File) {
	setString(&s.Local.Dir, f.Local.Dir)
	setString(&s.S3.Bucket, f.S3.Bucket)
	setString(&s.S3.Prefix, f.S3.Prefix)
	setString(&s.S3.Region, f.S3.Region)
	setString(&s.S3.Endpoint, f.S3.Endpoint)
	if f.S3.PathStyle != nil {
		s.S3.PathStyle = *f.S3.PathStyle
	}
	setString(&s.State.File, f.State.File)
	if f.State.Mode != "" {
		s.State.Mode = domain.StateMode(f.State.Mode)
	}
	setString(&s.Tool.Binary, f.Tool.Binary)
	setString(&s.Tool.Composer, f.Tool.Composer)
	if f.Backend != "" {
		s.Backend = domain.Backend(f.Backend)
	}
	if f.Log.Format != "" {
		s.Log.Format = domain.LogFormat(f.Log.Format)
	}
	if f.Log.Debug != nil {
		s.Log.Debug = *f.Log.Debug
	}
}

func (l *Loader) applyEnv(s *domain.Settings) error {
	if v := l.getenv(EnvBackend); v != "" {
		s.Backend = domain.Backend(v)
	}
	setString(&s.Local.Dir, l.getenv(EnvLocalDir))
	setString(&s.S3.Bucket, l.getenv(EnvS3Bucket))
	setString(&s.S3.Prefix, l.getenv(EnvS3Prefix))
	setString(&s.S3.Region, l.getenv(EnvS3Region))
	setString(&s.S3.Endpoint, l.getenv(EnvS3Endpoint))
	setString(&s.State.File, l.getenv(EnvStateFile))
	if v := l.getenv(EnvStateMode); v != "" {
		s.State.Mode = domain.StateMode(v)
	}
	setString(&s.Tool.Binary, l.getenv(EnvTool))
	setString(&s.Tool.Composer, l.getenv(EnvComposer))
	if v := l.getenv(EnvLogFormat); v != "" {
		s.Log.Format = domain.LogFormat(v)
	}

	if err := l.setBool(&s.S3.PathStyle, EnvS3PathStyle); err != nil {
		return err
	}
	if err := l.setBool(&s.Log.Debug, EnvDebug); err != nil {
		return err
	}
	// The runner sets RUNNER_DEBUG=1 when a job is re-run with debug logging.
	if l.getenv(EnvRunnerDebug) == "1" {
		s.Log.Debug = true
	}

	s.State.RunnerFile = l.getenv(EnvRunnerState)
	s.Log.Groups = l.getenv(EnvRunnerAction) == "true"

	return nil
}

func (l *Loader) setBool(dst *bool, name string) error {
	v := l.getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "env", name)
	}
	*dst = b
	return nil
}

func validate(s *domain.Settings) error {
	switch s.Backend {
	case domain.BackendLocal, domain.BackendS3, domain.BackendNone:
	default:
		return zerr.With(domain.ErrUnknownBackend, "backend", string(s.Backend))
	}

	switch s.State.Mode {
	case domain.StateModeFile, domain.StateModeRunner:
	default:
		return zerr.With(domain.ErrUnknownStateMode, "mode", string(s.State.Mode))
	}

	switch s.Log.Format {
	case domain.LogFormatPretty, domain.LogFormatJSON:
	default:
		return zerr.With(domain.ErrUnknownLogFormat, "format", string(s.Log.Format))
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
