package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger named after the application. Logs go to stderr
// so stdout stays free for command results. Console encoding is used unless
// json is set; debug also enables stack traces on errors.
func New(name string, json bool, debug bool) (*zap.Logger, error) {
	logger, err := newConfig(json, debug).Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(name), nil
}

func newConfig(json bool, debug bool) zap.Config {
	level := zapcore.InfoLevel
	encoding := "console"
	stacktraceKey := ""

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
		stacktraceKey = "stacktrace"
	}

	return zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: !debug,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",
			NameKey:    "logger",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			StacktraceKey: stacktraceKey,

			// Retry delays of the llm transports are logged as durations.
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
}
