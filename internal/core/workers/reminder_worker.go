package workers

import (
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"go.uber.org/zap"
)

// ReminderSource yields the habit to remind about, if any. Implementations
// must be safe to call from the scheduler goroutine and must not mutate.
type ReminderSource interface {
	PickReminderTarget() (domain.Habit, bool)
}

type Notifier func(h domain.Habit)

// ReminderWorker periodically asks its source for an incomplete habit and
// hands it to the notifier. It never writes to the habit collection.
type ReminderWorker struct {
	source   ReminderSource
	notify   Notifier
	interval time.Duration
	log      *zap.Logger

	mu        sync.Mutex
	scheduler *Scheduler
}

func NewReminderWorker(source ReminderSource, interval time.Duration, notify Notifier, log *zap.Logger) *ReminderWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderWorker{
		source:   source,
		notify:   notify,
		interval: interval,
		log:      log.Named("reminder"),
	}
}

// Start schedules the reminder tick. Calling Start on a running worker is a no-op.
func (w *ReminderWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.scheduler != nil {
		return nil
	}

	scheduler := NewScheduler(time.Local)
	if _, err := scheduler.ScheduleInterval(w.interval, w.Tick); err != nil {
		return err
	}
	scheduler.Start()
	w.scheduler = scheduler

	w.log.Debug("reminder worker started", zap.Duration("interval", w.interval))
	return nil
}

// Stop cancels the schedule and waits for a running tick to finish.
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	scheduler := w.scheduler
	w.scheduler = nil
	w.mu.Unlock()

	if scheduler == nil {
		return
	}
	scheduler.Stop()
	w.log.Debug("reminder worker stopped")
}

func (w *ReminderWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scheduler != nil
}

// Tick performs one reminder check.
func (w *ReminderWorker) Tick() {
	habit, ok := w.source.PickReminderTarget()
	if !ok {
		w.log.Debug("no pending habit to remind")
		return
	}
	w.log.Debug("reminding", zap.String("habit_id", habit.ID), zap.String("habit", habit.Name))
	if w.notify != nil {
		w.notify(habit)
	}
}
