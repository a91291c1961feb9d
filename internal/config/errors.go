package config

import (
	"errors"
	"fmt"
	"time"
)

// Configuration errors.  Load wraps every validation failure in
// ErrInvalidConfig so callers can match either level with errors.Is.
var (
	ErrReadEnvFile      = errors.New("read .env file")
	ErrReadConfigFile   = errors.New("read config file")
	ErrParseYAML        = errors.New("parse YAML config")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrInvalidPort      = errors.New("invalid port")
	ErrInvalidBodyLimit = errors.New("invalid body limit")
	ErrNegativeDuration = errors.New("duration must not be negative")
	ErrInvalidLogLevel  = errors.New("unsupported log level")
	ErrInvalidLogFormat = errors.New("unsupported log format")
	ErrEmptyQueueName   = errors.New("events queue name is empty")
)

// WrapInvalidPort wraps ErrInvalidPort with the offending value.
func WrapInvalidPort(port string) error {
	return fmt.Errorf("%w: %q", ErrInvalidPort, port)
}

// WrapInvalidBodyLimit wraps ErrInvalidBodyLimit with the offending value.
func WrapInvalidBodyLimit(limit string) error {
	return fmt.Errorf("%w: %q", ErrInvalidBodyLimit, limit)
}

// WrapNegativeDuration wraps ErrNegativeDuration with the field name and value.
func WrapNegativeDuration(field string, d time.Duration) error {
	return fmt.Errorf("%w: %s=%v", ErrNegativeDuration, field, d)
}

// WrapInvalidLogLevel wraps ErrInvalidLogLevel with the offending level.
func WrapInvalidLogLevel(level string) error {
	return fmt.Errorf("%w: %s", ErrInvalidLogLevel, level)
}

// WrapInvalidLogFormat wraps ErrInvalidLogFormat with the offending format.
func WrapInvalidLogFormat(format string) error {
	return fmt.Errorf("%w: %s", ErrInvalidLogFormat, format)
}
