package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/workers"
	"go.uber.org/zap"
)

// HabitTracker owns the habit collection and the profile summary. It is the
// single writer of the collection; the reminder worker only reads through
// PickReminderTarget.
type HabitTracker struct {
	repo domain.StateRepository
	log  *zap.Logger
	now  func() time.Time

	mu      sync.RWMutex
	profile domain.UserProfile
	habits  []*domain.Habit

	reminder *workers.ReminderWorker
}

type Option func(*HabitTracker)

// WithClock overrides the time source used for every "today" computation.
func WithClock(now func() time.Time) Option {
	return func(t *HabitTracker) {
		t.now = now
	}
}

func NewHabitTracker(repo domain.StateRepository, log *zap.Logger, opts ...Option) *HabitTracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &HabitTracker{
		repo: repo,
		log:  log.Named("tracker"),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.profile = domain.NewUserProfile(t.now())
	t.habits = []*domain.Habit{}
	return t
}

// Load replaces the in-memory state with the stored one. Read or parse
// failures are not returned: the tracker falls back to an empty collection
// and an unset profile.
func (t *HabitTracker) Load(ctx context.Context) {
	now := t.now()

	state, err := t.repo.Load(ctx)
	if err != nil {
		t.log.Warn("failed to load habits, starting with an empty state", zap.Error(err))
		state = domain.NewState(now)
	}
	state.Normalize(now)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.profile = state.Profile
	t.habits = state.Habits
	t.log.Debug("state loaded", zap.Int("habits", len(t.habits)))
}

// ParseFrequency turns raw user input into a weekly target, defaulting to 1
// for anything missing, non-numeric or not positive.
func ParseFrequency(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return domain.DefaultTargetFrequency
	}
	return n
}

func (t *HabitTracker) AddHabit(ctx context.Context, name, frequency string) (domain.Habit, error) {
	habit, err := domain.NewHabit(name, ParseFrequency(frequency), t.now())
	if err != nil {
		return domain.Habit{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.habits = append(t.habits, habit)
	if err := t.commitLocked(ctx); err != nil {
		return habit.Clone(), err
	}

	t.log.Info("habit added", zap.String("habit_id", habit.ID), zap.Int("target", habit.TargetFrequency))
	return habit.Clone(), nil
}

func (t *HabitTracker) CompleteHabit(ctx context.Context, index string) (domain.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, err := t.resolveIndexLocked(index)
	if err != nil {
		return domain.Habit{}, err
	}

	habit := t.habits[i]
	habit.MarkComplete(t.now())
	if err := t.commitLocked(ctx); err != nil {
		return habit.Clone(), err
	}

	t.log.Info("habit completed", zap.String("habit_id", habit.ID))
	return habit.Clone(), nil
}

func (t *HabitTracker) DeleteHabit(ctx context.Context, index string) (domain.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, err := t.resolveIndexLocked(index)
	if err != nil {
		return domain.Habit{}, err
	}

	removed := t.habits[i]
	t.habits = append(t.habits[:i], t.habits[i+1:]...)
	if err := t.commitLocked(ctx); err != nil {
		return removed.Clone(), err
	}

	t.log.Info("habit deleted", zap.String("habit_id", removed.ID))
	return removed.Clone(), nil
}

// ClearAll drops every habit and persists the empty collection.
func (t *HabitTracker) ClearAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.habits = []*domain.Habit{}
	return t.commitLocked(ctx)
}

// SetProfileName records the owner's display name, normally once on first run.
func (t *HabitTracker) SetProfileName(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.profile.SetName(name)
	return t.commitLocked(ctx)
}

func (t *HabitTracker) NeedsProfile() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.profile.HasName()
}

func (t *HabitTracker) Profile() domain.UserProfile {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.profile
}

// Now exposes the tracker clock so views agree with the tracker on "today".
func (t *HabitTracker) Now() time.Time {
	return t.now()
}

// ListHabits returns progress views in insertion order.
func (t *HabitTracker) ListHabits(filter domain.HabitFilter) []domain.HabitProgress {
	now := t.now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	list := make([]domain.HabitProgress, 0, len(t.habits))
	for _, h := range t.habits {
		if filter.Matches(h.IsCompletedThisWeek(now)) {
			list = append(list, h.Progress(now))
		}
	}
	return list
}

func (t *HabitTracker) Statistics() domain.Statistics {
	now := t.now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := domain.Statistics{
		TotalHabits: len(t.habits),
		HabitNames:  make([]string, 0, len(t.habits)),
	}
	for _, h := range t.habits {
		stats.HabitNames = append(stats.HabitNames, h.Name)
		if h.IsCompletedThisWeek(now) {
			stats.CompletedThisWeek++
		}
		if h.TargetFrequency >= domain.HighFrequencyThreshold {
			stats.HasHighFrequency = true
		}
	}
	return stats
}

// PickReminderTarget selects the oldest habit not yet completed this week.
// Equal creation dates keep insertion order.
func (t *HabitTracker) PickReminderTarget() (domain.Habit, bool) {
	now := t.now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	var pick *domain.Habit
	for _, h := range t.habits {
		if h.IsCompletedThisWeek(now) {
			continue
		}
		if pick == nil || h.CreatedAt.Before(pick.CreatedAt) {
			pick = h
		}
	}
	if pick == nil {
		return domain.Habit{}, false
	}
	return pick.Clone(), true
}

// StartReminder begins periodic reminders. The worker handle is kept so
// StopReminder can cancel it before exit.
func (t *HabitTracker) StartReminder(interval time.Duration, notify workers.Notifier) error {
	t.mu.Lock()
	if t.reminder != nil {
		t.mu.Unlock()
		return nil
	}
	worker := workers.NewReminderWorker(t, interval, notify, t.log)
	t.reminder = worker
	t.mu.Unlock()

	if err := worker.Start(); err != nil {
		t.mu.Lock()
		t.reminder = nil
		t.mu.Unlock()
		return fmt.Errorf("start reminder: %w", err)
	}
	return nil
}

func (t *HabitTracker) StopReminder() {
	t.mu.Lock()
	worker := t.reminder
	t.reminder = nil
	t.mu.Unlock()

	if worker != nil {
		worker.Stop()
	}
}

func (t *HabitTracker) resolveIndexLocked(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidIndex, raw)
	}
	i := n - 1
	if i < 0 || i >= len(t.habits) {
		return 0, fmt.Errorf("%w: %d is out of range 1..%d", domain.ErrInvalidIndex, n, len(t.habits))
	}
	return i, nil
}

// commitLocked recomputes the derived profile counters and writes the full
// state. Callers hold t.mu for writing.
func (t *HabitTracker) commitLocked(ctx context.Context) error {
	now := t.now()
	t.profile.Recompute(t.habits, now)

	state := &domain.State{Profile: t.profile, Habits: t.habits}
	if err := t.repo.Save(ctx, state.Clone()); err != nil {
		t.log.Error("failed to save habits", zap.Error(err))
		return fmt.Errorf("%w: save: %w", domain.ErrPersistence, err)
	}
	return nil
}
