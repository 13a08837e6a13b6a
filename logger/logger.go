package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger = getLogger()

// loggerConfig keeps every entry on one line on stdout so the scheduler
// captures one timestamped line per event. ENV=prod gets the console-encoded
// production config at Info; everything else the development config at Debug.
func loggerConfig() zap.Config {
	var cfg zap.Config
	if os.Getenv("ENV") == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stdout"}
	return cfg
}

func getLogger() *zap.Logger {
	log, err := loggerConfig().Build()
	if err != nil {
		panic("unable to build zap logger: " + err.Error())
	}
	return log
}

func Get() *zap.Logger {
	return Log
}

// With returns a child of the global logger carrying the given fields.
func With(fields ...zap.Field) *zap.Logger {
	return Log.With(fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

// Sync flushes buffered entries. Errors from syncing stdout are ignored.
func Sync() {
	_ = Log.Sync()
}
