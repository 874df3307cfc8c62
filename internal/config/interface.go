package config

import "os"

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// envConfigPath returns an explicit config file path, if one is set.
// ZXISRUN_CONFIG takes precedence over the default search paths.
func envConfigPath() string {
	return os.Getenv("ZXISRUN_CONFIG")
}

func argsFrom() []string {
	if len(os.Args) <= 1 {
		return nil
	}

	return os.Args[1:]
}
