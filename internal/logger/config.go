package logger

// Config defines where and how verbosely the recorder logs.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Path is the log file. Empty logs to stderr.
	Path string `yaml:"path"`
	// MaxSize is the size in megabytes before the file is rotated.
	MaxSize int `yaml:"max_size"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups"`
	// MaxAge is the number of days rotated files are kept.
	MaxAge int `yaml:"max_age"`
	// Compress gzips rotated files.
	Compress bool `yaml:"compress"`
}
