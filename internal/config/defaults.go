package config

const (
	defaultSocketPath     = "./ascd.sock"
	defaultDialTimeout    = 2
	defaultRequestTimeout = 0
	defaultPrompt         = "> "
	defaultProgram        = "test"
	defaultHistoryFile    = "~/.local/state/ascsh/history"
	defaultHistorySize    = 1000
	defaultColor          = ColorAuto
	defaultLogFormat      = "console"
	defaultLogLevel       = "warn"
)

// Color modes accepted by shell.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Daemon: Daemon{
			Socket:         defaultSocketPath,
			DialTimeout:    defaultDialTimeout,
			RequestTimeout: defaultRequestTimeout,
		},
		Shell: Shell{
			Prompt:         defaultPrompt,
			DefaultProgram: defaultProgram,
			HistoryFile:    defaultHistoryFile,
			HistorySize:    defaultHistorySize,
			Color:          defaultColor,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
