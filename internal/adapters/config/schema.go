package config

// File represents the structure of the buildcache.yaml configuration file.
// Every field is optional; zero values keep the defaults.
type File struct {
	Backend string   `yaml:"backend"`
	Local   LocalDTO `yaml:"local"`
	S3      S3DTO    `yaml:"s3"`
	State   StateDTO `yaml:"state"`
	Tool    ToolDTO  `yaml:"tool"`
	Log     LogDTO   `yaml:"log"`
}

// LocalDTO represents the local backend section.
type LocalDTO struct {
	Dir string `yaml:"dir"`
}

// S3DTO represents the s3 backend section.
type S3DTO struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle *bool  `yaml:"pathStyle"`
}

// StateDTO represents the state section.
type StateDTO struct {
	Mode string `yaml:"mode"`
	File string `yaml:"file"`
}

// ToolDTO represents the tool section.
type ToolDTO struct {
	Binary   string `yaml:"binary"`
	Composer string `yaml:"composer"`
}

// LogDTO represents the log section.
type LogDTO struct {
	Format string `yaml:"format"`
	Debug  *bool  `yaml:"debug"`
}
