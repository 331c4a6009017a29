package logger

import (
	"os"

	"mission-desk/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = zap.NewNop()

// Initialize sets up the logger with the given configuration
func Initialize(loggerCfg config.LoggerConfig) error {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	logLevel := zapcore.InfoLevel
	if loggerCfg.Level != "" {
		if err := logLevel.Set(loggerCfg.Level); err != nil {
			return err
		}
	}

	var console zapcore.Encoder
	if loggerCfg.Env == "production" {
		console = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		console = zapcore.NewConsoleEncoder(encoderConfig)
	}
	cores := []zapcore.Core{zapcore.NewCore(console, zapcore.AddSync(os.Stdout), logLevel)}

	if loggerCfg.File != "" {
		// Rotated file sink, always JSON.
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   loggerCfg.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, logLevel))
	}

	log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// Get returns the global logger instance
func Get() *zap.Logger {
	return log
}

// Sync flushes any buffered log entries
func Sync() error {
	return log.Sync()
}
