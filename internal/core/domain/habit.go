package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type HabitStatus string

const (
	StatusActive    HabitStatus = "Active"
	StatusCompleted HabitStatus = "Completed"

	DefaultTargetFrequency = 1
	HighFrequencyThreshold = 5
	UntitledHabitName      = "Untitled"
)

// Habit is a recurring activity with a weekly completion target.
// Its weekly status is always derived from Completions; nothing about
// progress is stored.
type Habit struct {
	ID              string
	Name            string
	TargetFrequency int
	Completions     []time.Time
	CreatedAt       time.Time
}

// HabitProgress is a read-only view of a habit evaluated at one instant.
type HabitProgress struct {
	Habit
	WeekCount  int
	Percentage int
	Status     HabitStatus
}

func normalizeTarget(target int) int {
	if target < 1 {
		return DefaultTargetFrequency
	}
	return target
}

func NewHabit(name string, target int, now time.Time) (*Habit, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrHabitNameEmpty
	}

	return &Habit{
		ID:              uuid.New().String(),
		Name:            trimmed,
		TargetFrequency: normalizeTarget(target),
		Completions:     []time.Time{},
		CreatedAt:       DateOf(now),
	}, nil
}

// MarkComplete records date as a completion. Repeated calls for the same
// calendar day are no-ops.
func (h *Habit) MarkComplete(date time.Time) {
	day := DateOf(date)
	if h.completedOn(day) {
		return
	}
	h.Completions = append(h.Completions, day)
}

func (h *Habit) completedOn(day time.Time) bool {
	for _, c := range h.Completions {
		if sameDate(c, day) {
			return true
		}
	}
	return false
}

func (h *Habit) WeekCompletionCount(now time.Time) int {
	start := WeekStart(now)

	count := 0
	for _, c := range h.Completions {
		if !DateOf(c).Before(start) {
			count++
		}
	}
	return count
}

func (h *Habit) IsCompletedThisWeek(now time.Time) bool {
	return h.WeekCompletionCount(now) >= h.TargetFrequency
}

func (h *Habit) ProgressPercentage(now time.Time) int {
	target := h.TargetFrequency
	if target < 1 {
		target = 1
	}

	pct := int(math.Round(float64(h.WeekCompletionCount(now)) / float64(target) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func (h *Habit) Status(now time.Time) HabitStatus {
	if h.IsCompletedThisWeek(now) {
		return StatusCompleted
	}
	return StatusActive
}

func (h *Habit) Progress(now time.Time) HabitProgress {
	return HabitProgress{
		Habit:      h.Clone(),
		WeekCount:  h.WeekCompletionCount(now),
		Percentage: h.ProgressPercentage(now),
		Status:     h.Status(now),
	}
}

func (h *Habit) Clone() Habit {
	clone := *h
	clone.Completions = make([]time.Time, len(h.Completions))
	copy(clone.Completions, h.Completions)
	return clone
}

// normalize restores the invariants a stored habit may have lost.
func (h *Habit) normalize(now time.Time) {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		h.Name = UntitledHabitName
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = DateOf(now)
	}
	h.TargetFrequency = normalizeTarget(h.TargetFrequency)

	unique := make([]time.Time, 0, len(h.Completions))
	seen := make(map[string]bool, len(h.Completions))
	for _, c := range h.Completions {
		key := FormatDate(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, DateOf(c))
	}
	h.Completions = unique
}
