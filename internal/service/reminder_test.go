package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskmanager/internal/model"
)

// fakeDueStore keeps tasks in memory and applies the same eligibility
// predicate the repository query uses.
type fakeDueStore struct {
	tasks     []model.Task
	findErr   error
	markErr   error
	marked    [][]uint
	findCalls int
}

func (s *fakeDueStore) FindDue(_ context.Context, now time.Time) ([]model.Task, error) {
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	var due []model.Task
	for _, task := range s.tasks {
		if task.ReminderTime != nil && !task.ReminderTime.After(now) &&
			task.Status == model.StatusPending && !task.IsReminded {
			due = append(due, task)
		}
	}
	return due, nil
}

func (s *fakeDueStore) MarkNotified(_ context.Context, taskIDs []uint) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, taskIDs)
	for _, id := range taskIDs {
		for i := range s.tasks {
			if s.tasks[i].ID == id {
				s.tasks[i].IsReminded = true
			}
		}
	}
	return nil
}

type fakeNotifier struct {
	notified []uint
	failFor  map[uint]error
}

func (n *fakeNotifier) Notify(_ context.Context, task model.Task) error {
	if err, ok := n.failFor[task.ID]; ok {
		return err
	}
	n.notified = append(n.notified, task.ID)
	return nil
}

// blockingNotifier parks inside Notify until released, holding the sweep
// open so a second tick can race it.
type blockingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (n *blockingNotifier) Notify(_ context.Context, _ model.Task) error {
	close(n.entered)
	<-n.release
	return nil
}

func reminderAt(t time.Time) *time.Time { return &t }

func TestSweep_NotifiesAndFlagsOnce(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeDueStore{tasks: []model.Task{
		{ID: 1, Title: "a", Status: model.StatusPending, ReminderTime: reminderAt(now.Add(-time.Hour))},
		{ID: 2, Title: "b", Status: model.StatusPending, ReminderTime: reminderAt(now.Add(-time.Minute))},
		{ID: 3, Title: "c", Status: model.StatusPending, ReminderTime: reminderAt(now)},
	}}
	notifier := &fakeNotifier{}
	sweeper := NewReminderSweeper(store, notifier, zap.NewNop())

	count, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.ElementsMatch(t, []uint{1, 2, 3}, notifier.notified)
	require.Len(t, store.marked, 1)

	// Second sweep at the same instant finds nothing.
	count, err = sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Len(t, notifier.notified, 3)
}

func TestSweep_SkipsFutureCompletedAndAlreadyReminded(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeDueStore{tasks: []model.Task{
		{ID: 1, Status: model.StatusPending, ReminderTime: reminderAt(now.Add(time.Hour))},
		{ID: 2, Status: model.StatusCompleted, ReminderTime: reminderAt(now.Add(-time.Hour))},
		{ID: 3, Status: model.StatusPending, ReminderTime: reminderAt(now.Add(-time.Hour)), IsReminded: true},
		{ID: 4, Status: model.StatusPending}, // no reminder set
	}}
	notifier := &fakeNotifier{}
	sweeper := NewReminderSweeper(store, notifier, zap.NewNop())

	count, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Empty(t, notifier.notified)
	require.Empty(t, store.marked)
}

func TestSweep_NotifyFailureStillFlags(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeDueStore{tasks: []model.Task{
		{ID: 1, Status: model.StatusPending, ReminderTime: reminderAt(now.Add(-time.Hour))},
		{ID: 2, Status: model.StatusPending, ReminderTime: reminderAt(now.Add(-time.Hour))},
	}}
	notifier := &fakeNotifier{failFor: map[uint]error{1: errors.New("sink down")}}
	sweeper := NewReminderSweeper(store, notifier, zap.NewNop())

	count, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Len(t, store.marked, 1)
	require.ElementsMatch(t, []uint{1, 2}, store.marked[0])
}

func TestSweep_StoreFailureAbandonsTick(t *testing.T) {
	store := &fakeDueStore{findErr: errors.New("db gone")}
	notifier := &fakeNotifier{}
	sweeper := NewReminderSweeper(store, notifier, zap.NewNop())

	_, err := sweeper.Sweep(context.Background(), time.Now())
	require.Error(t, err)
	require.Empty(t, notifier.notified)

	// Eligibility persists: once the store recovers, the next tick works.
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	store.findErr = nil
	store.tasks = []model.Task{
		{ID: 9, Status: model.StatusPending, ReminderTime: reminderAt(now.Add(-time.Minute))},
	}
	count, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestSweep_OverlappingTickSkipped(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeDueStore{tasks: []model.Task{
		{ID: 1, Status: model.StatusPending, ReminderTime: reminderAt(now.Add(-time.Minute))},
	}}
	notifier := &blockingNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	sweeper := NewReminderSweeper(store, notifier, zap.NewNop())

	var (
		firstCount int
		firstErr   error
		done       = make(chan struct{})
	)
	go func() {
		defer close(done)
		firstCount, firstErr = sweeper.Sweep(context.Background(), now)
	}()
	<-notifier.entered

	// The first sweep is parked inside Notify; a tick firing now must be a
	// no-op that never touches the store.
	count, err := sweeper.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Equal(t, 1, store.findCalls)
	require.Empty(t, store.marked)

	close(notifier.release)
	<-done

	require.NoError(t, firstErr)
	require.Equal(t, 1, firstCount)
	require.Len(t, store.marked, 1)
	require.Equal(t, 1, store.findCalls)
}

func TestSweep_MarkFailureReturnsError(t *testing.T) {
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeDueStore{
		tasks:   []model.Task{{ID: 1, Status: model.StatusPending, ReminderTime: reminderAt(now.Add(-time.Minute))}},
		markErr: errors.New("write failed"),
	}
	notifier := &fakeNotifier{}
	sweeper := NewReminderSweeper(store, notifier, zap.NewNop())

	_, err := sweeper.Sweep(context.Background(), now)
	require.Error(t, err)
	// The task was notified but not flagged; the next tick re-notifies.
	require.Equal(t, []uint{1}, notifier.notified)
}
