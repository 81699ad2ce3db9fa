package notify

import (
	"context"

	"go.uber.org/zap"

	"taskmanager/internal/model"
)

// Notifier delivers a reminder for a task. Implementations decide the
// channel; the sweeper only needs the injection point.
type Notifier interface {
	Notify(ctx context.Context, task model.Task) error
}

// LogNotifier writes reminders to the log. This is the default sink when no
// delivery channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, task model.Task) error {
	fields := []zap.Field{
		zap.Uint("task_id", task.ID),
		zap.Uint("user_id", task.UserID),
		zap.String("title", task.Title),
	}
	if task.DueDate != nil {
		fields = append(fields, zap.Time("due_date", *task.DueDate))
	}
	n.logger.Warn("REMINDER: task is due", fields...)
	return nil
}
