package logging

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Levels.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Outputs.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Defaults for Config.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultOutput     = OutputStderr
	DefaultMaxSize    = 100 // MB
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7 // days
)

// Config selects level, format and destination of the log stream.
type Config struct {
	Level  string
	Format string
	Output string

	// FilePath, MaxSize, MaxBackups, MaxAge and Compress apply to OutputFile.
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// DefaultConfig returns a Config writing text records at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		Format:     DefaultFormat,
		Output:     DefaultOutput,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   true,
	}
}
