package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"macrolens/internal/config"
)

// New builds the process logger from config. An unknown level falls back to
// info rather than failing startup.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:       cfg.Development,
		Encoding:          cfg.Encoding,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		EncoderConfig:     encoderConfig(cfg.Encoding),
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	if cfg.Sampling {
		zc.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	}

	return zc.Build()
}

func parseLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.Set(strings.ToLower(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// encoderConfig picks human-readable output for the console encoder and
// machine-readable ISO8601 timestamps for everything else.
func encoderConfig(encoding string) zapcore.EncoderConfig {
	if encoding == "console" {
		return zap.NewDevelopmentEncoderConfig()
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return ec
}
