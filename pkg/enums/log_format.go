package enums

import "fmt"

// LogFormat selects how log entries are encoded.
type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
)

var validLogFormats = []LogFormat{
	LogFormatJSON,
	LogFormatConsole,
}

// String implements fmt.Stringer.
func (l LogFormat) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LogFormat.
func (l LogFormat) IsValid() bool {
	for _, candidate := range validLogFormats {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLogFormat converts raw input into a LogFormat.
func ParseLogFormat(value string) (LogFormat, error) {
	for _, candidate := range validLogFormats {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid log format %q", value)
}
