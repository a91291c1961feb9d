// Package logger builds the zap logger used across the service.
package logger

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iliyamo/taskboard/internal/config"
)

// ErrLoggerInit is returned when the logger cannot be built.
var ErrLoggerInit = errors.New("logger init failed")

// New creates a logger from cfg.  The json format uses zap's production
// encoder, text uses the development encoder with coloured levels.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoggerInit, err)
	}

	var zapCfg zap.Config
	if cfg.Format == config.LogFormatJSON {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.DisableStacktrace = cfg.DisableStacktrace
	zapCfg.DisableCaller = cfg.DisableCaller

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoggerInit, err)
	}
	return log, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case config.LogLevelDebug:
		return zapcore.DebugLevel, nil
	case config.LogLevelInfo:
		return zapcore.InfoLevel, nil
	case config.LogLevelWarn:
		return zapcore.WarnLevel, nil
	case config.LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, config.WrapInvalidLogLevel(level)
	}
}
