package domain

// Backend names the cache service implementation.
type Backend string

const (
	// BackendLocal stores cache blobs in a directory on the runner.
	BackendLocal Backend = "local"
	// BackendS3 stores cache blobs in an S3-compatible bucket.
	BackendS3 Backend = "s3"
	// BackendNone disables the cache service; restore and save become no-ops.
	BackendNone Backend = "none"
)

// LogFormat names the log output format.
type LogFormat string

const (
	// LogFormatPretty is human-readable, colored output.
	LogFormatPretty LogFormat = "pretty"
	// LogFormatJSON is one JSON object per line.
	LogFormatJSON LogFormat = "json"
)

// StateMode names how the pre-build phase hands its record to the post-build phase.
type StateMode string

const (
	// StateModeFile keeps the record in a file that both phases open.
	StateModeFile StateMode = "file"
	// StateModeRunner exchanges the record through the runner's state command file.
	// The runner only delivers it to the post step of the same packaged action.
	StateModeRunner StateMode = "runner"
)

// Settings holds the runtime configuration of the helper.
type Settings struct {
	Backend Backend
	Local   LocalSettings
	S3      S3Settings
	State   StateSettings
	Tool    ToolSettings
	Log     LogSettings
}

// LocalSettings configures the local cache backend.
type LocalSettings struct {
	Dir string
}

// S3Settings configures the S3 cache backend.
type S3Settings struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// StateSettings configures where the cross-phase record lives.
type StateSettings struct {
	Mode StateMode
	// File is the path of the state record. Empty selects a job-scoped temp file.
	File string
	// RunnerFile is the runner-provided state command file, used in StateModeRunner.
	RunnerFile string
}

// ToolSettings names the external binaries.
type ToolSettings struct {
	// Binary is the build tool invoked for the CI build.
	Binary string
	// Composer is the dependency manager queried for its cache directory.
	Composer string
}

// LogSettings configures logging.
type LogSettings struct {
	Format LogFormat
	Debug  bool
	// Groups enables runner log group commands.
	Groups bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Backend: BackendLocal,
		Local:   LocalSettings{Dir: DefaultLocalCachePath()},
		State:   StateSettings{Mode: StateModeFile},
		Tool: ToolSettings{
			Binary:   "shopware-cli",
			Composer: "composer",
		},
		Log: LogSettings{Format: LogFormatPretty},
	}
}
