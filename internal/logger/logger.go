package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It discards everything until Init is called.
var Logger = zap.NewNop()

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel: "\033[36m",
	zapcore.InfoLevel:  "\033[32m",
	zapcore.WarnLevel:  "\033[33m",
	zapcore.ErrorLevel: "\033[31m",
	zapcore.FatalLevel: "\033[35m",
}

const resetColor = "\033[0m"

func encoderConfig(colored bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if colored {
		cfg.EncodeLevel = colorLevelEncoder
		cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("15:04:05.000"))
		}
	}
	return cfg
}

func colorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	level := strings.ToUpper(l.String())
	if len(level) > 3 {
		level = level[:3]
	}
	enc.AppendString(levelColors[l] + level + resetColor)
}

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init builds the global logger. mode "json" writes structured lines for log
// shippers, anything else writes colored console output.
func Init(level, mode string) {
	var enc zapcore.Encoder
	if mode == "json" {
		enc = zapcore.NewJSONEncoder(encoderConfig(false))
	} else {
		enc = zapcore.NewConsoleEncoder(encoderConfig(true))
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(os.Stdout)), ParseLevel(level))
	Logger = zap.New(core, zap.AddCallerSkip(1), zap.Fields(zap.String("service", "recipefy")))
	zap.ReplaceGlobals(Logger)
}

// Set replaces the global logger, mostly for tests using zaptest/observer.
func Set(l *zap.Logger) {
	Logger = l
}

func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger.Sync()
}
