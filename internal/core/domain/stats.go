package domain

import (
	"fmt"
	"strings"
)

type Statistics struct {
	TotalHabits       int
	CompletedThisWeek int
	HabitNames        []string
	HasHighFrequency  bool
}

type HabitFilter string

const (
	FilterAll       HabitFilter = "all"
	FilterActive    HabitFilter = "active"
	FilterCompleted HabitFilter = "completed"
)

func ParseHabitFilter(raw string) (HabitFilter, error) {
	switch f := HabitFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
	}
}

// Matches reports whether a habit with the given weekly completion state
// belongs to the filtered view.
func (f HabitFilter) Matches(completed bool) bool {
	switch f {
	case FilterActive:
		return !completed
	case FilterCompleted:
		return completed
	default:
		return true
	}
}
