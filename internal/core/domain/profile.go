package domain

import (
	"strings"
	"time"
)

const AnonymousProfileName = "Anonymous"

// UserProfile carries the installation owner plus counters derived from the
// habit collection. Callers never set TotalHabits or CompletedThisWeek
// directly; Recompute does.
type UserProfile struct {
	Name              string
	JoinDate          time.Time
	TotalHabits       int
	CompletedThisWeek int
}

func NewUserProfile(now time.Time) UserProfile {
	return UserProfile{JoinDate: DateOf(now)}
}

func (p *UserProfile) Recompute(habits []*Habit, now time.Time) {
	completed := 0
	for _, h := range habits {
		if h.IsCompletedThisWeek(now) {
			completed++
		}
	}

	p.TotalHabits = len(habits)
	p.CompletedThisWeek = completed
	if p.JoinDate.IsZero() {
		p.JoinDate = DateOf(now)
	}
}

// SetName assigns the display name once; blank input falls back to
// AnonymousProfileName.
func (p *UserProfile) SetName(name string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = AnonymousProfileName
	}
	p.Name = trimmed
}

func (p UserProfile) HasName() bool {
	return p.Name != ""
}

// DaysJoined counts calendar days since JoinDate, the join day included.
func (p UserProfile) DaysJoined(now time.Time) int {
	if p.JoinDate.IsZero() {
		return 1
	}
	join := DateOf(p.JoinDate)
	today := DateOf(now)

	days := 0
	for d := join; d.Before(today); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days + 1
}
