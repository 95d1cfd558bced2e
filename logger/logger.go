package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level  string `yaml:"level"  doc:"log from debug, info, warn or error"`
	File   string `yaml:"file"   doc:"append logs to file"`
	Format string `yaml:"format" doc:"format logs as console or json"`
}

func level(option string) (zapcore.Level, bool) {
	switch strings.ToLower(option) {
	case "", "info":
		return zapcore.InfoLevel, true
	case "debug":
		return zapcore.DebugLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// New builds a logger from options. Options it cannot honour are reset to
// their defaults and reported as a warning on the returned logger.
func New(options *Options) *zap.Logger {
	lvl, ok := level(options.Level)
	if !ok {
		options.Level = ""
		logger := New(options)
		logger.Warn("could not parse logger level")
		return logger
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil

	switch strings.ToLower(options.Format) {
	case "", "console", "text":
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		config.Encoding = "json"
	default:
		options.Format = ""
		logger := New(options)
		logger.Warn("could not parse logger format")
		return logger
	}

	switch options.File {
	case "", "-":
		config.OutputPaths = []string{"stderr"}
	case os.DevNull:
		return zap.NewNop()
	default:
		config.OutputPaths = []string{options.File}
	}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		options.File = ""
		logger := New(options)
		logger.Warn("could not open logger file", zap.Error(err))
		return logger
	}
	return logger
}
