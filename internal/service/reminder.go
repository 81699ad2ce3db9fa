package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskmanager/internal/model"
	"taskmanager/internal/notify"
)

// DueTaskStore is the slice of the task store the sweeper needs.
type DueTaskStore interface {
	FindDue(ctx context.Context, now time.Time) ([]model.Task, error)
	MarkNotified(ctx context.Context, taskIDs []uint) error
}

// ReminderSweeper periodically flags and delivers elapsed reminders. One
// sweep runs at a time; a tick that fires while a sweep is in flight is
// skipped and retried on the next interval.
type ReminderSweeper struct {
	store    DueTaskStore
	notifier notify.Notifier
	logger   *zap.Logger

	mu sync.Mutex
}

func NewReminderSweeper(store DueTaskStore, notifier notify.Notifier, logger *zap.Logger) *ReminderSweeper {
	return &ReminderSweeper{store: store, notifier: notifier, logger: logger}
}

// Sweep notifies every task with reminder_time <= now, status Pending and
// is_reminded false, then persists all flags in one batch. A notification
// failure is logged and does not keep the task's flag from being set; a
// store failure abandons the tick and the next interval retries, since
// eligibility never expires. Returns the number of tasks notified.
func (s *ReminderSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	if !s.mu.TryLock() {
		s.logger.Debug("sweep already in flight, skipping tick")
		return 0, nil
	}
	defer s.mu.Unlock()

	tasks, err := s.store.FindDue(ctx, now)
	if err != nil {
		s.logger.Error("find due reminders", zap.Error(err))
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		if err := s.notifier.Notify(ctx, task); err != nil {
			s.logger.Warn("notify reminder",
				zap.Uint("task_id", task.ID),
				zap.String("title", task.Title),
				zap.Error(err))
		} else {
			s.logger.Info("reminder sent",
				zap.Uint("task_id", task.ID),
				zap.String("title", task.Title))
		}
		// Flag regardless of delivery outcome so a flaky sink cannot
		// spam the same reminder every tick.
		ids = append(ids, task.ID)
	}

	if err := s.store.MarkNotified(ctx, ids); err != nil {
		s.logger.Error("mark reminders notified", zap.Error(err))
		return 0, err
	}

	return len(ids), nil
}
