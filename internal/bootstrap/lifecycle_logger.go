package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type LifecycleEvent struct {
	Action  string
	Message string
	Meta    map[string]any
}

type LifecycleLogger interface {
	Log(ctx context.Context, event LifecycleEvent)
}

type ZapLifecycleLogger struct {
	logger *zap.Logger
}

func NewZapLifecycleLogger(logger ...*zap.Logger) *ZapLifecycleLogger {
	l := zap.L().Named("lifecycle")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("lifecycle")
	}
	return &ZapLifecycleLogger{logger: l}
}

func (l *ZapLifecycleLogger) Log(_ context.Context, event LifecycleEvent) {
	l.logger.Info("lifecycle event",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action", event.Action),
		zap.String("message", event.Message),
		zap.Any("meta", event.Meta),
	)
}
