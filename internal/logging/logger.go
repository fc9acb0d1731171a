package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel   = "info"
	notifierFlushWait = 5 * time.Second
)

type LoggerService interface {
	Log(value string, fields ...zap.Field)
	LogDebug(value string, fields ...zap.Field)
	LogWarning(value string, fields ...zap.Field)
	LogError(value string, err error, fields ...zap.Field)
	LogSuccess(value string, fields ...zap.Field)
	With(fields ...zap.Field) LoggerService
	Sync() error
}

// Notifier receives the messages operators want pushed to a chat.
type Notifier interface {
	Notify(level, value string)
	Close(ctx context.Context) error
}

type Logger struct {
	zap      *zap.Logger
	notifier Notifier
}

// NewLogger builds a JSON zap logger at the given level ("" falls back to
// LOG_LEVEL, then info). notifier may be nil.
func NewLogger(level string, notifier Notifier) (*Logger, error) {
	atomic := zap.NewAtomicLevel()
	if strings.TrimSpace(level) == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if err := atomic.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		_ = atomic.UnmarshalText([]byte(defaultLogLevel))
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		NameKey:    "logger",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		StacktraceKey:  "stacktrace",
	}

	cfg := zap.Config{
		Level:             atomic,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return New(base, notifier), nil
}

func New(base *zap.Logger, notifier Notifier) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{zap: base, notifier: notifier}
}

// Nop discards everything.
func Nop() *Logger {
	return New(zap.NewNop(), nil)
}

func (l *Logger) Log(value string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.zap.Info(value, fields...)
}

func (l *Logger) LogDebug(value string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.zap.Debug(value, fields...)
}

func (l *Logger) LogWarning(value string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.zap.Warn(value, fields...)
}

func (l *Logger) LogError(value string, err error, fields ...zap.Field) {
	if l == nil {
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.zap.Error(value, fields...)
	if l.notifier != nil {
		msg := value
		if err != nil {
			msg = value + ": " + err.Error()
		}
		l.notifier.Notify("ERROR", msg)
	}
}

func (l *Logger) LogSuccess(value string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.zap.Info(value, append(fields, zap.String("outcome", "success"))...)
	if l.notifier != nil {
		l.notifier.Notify("SUCCESS", value)
	}
}

func (l *Logger) With(fields ...zap.Field) LoggerService {
	if l == nil {
		return nil
	}
	return &Logger{zap: l.zap.With(fields...), notifier: l.notifier}
}

// Sync flushes queued notifications, then the zap buffers.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	if l.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), notifierFlushWait)
		defer cancel()
		if err := l.notifier.Close(ctx); err != nil {
			l.zap.Warn("notifier flush failed", zap.Error(err))
		}
	}
	return l.zap.Sync()
}
