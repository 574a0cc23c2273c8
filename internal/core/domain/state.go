package domain

import "time"

// State is the unit of persistence: the profile plus every habit in
// insertion order.
type State struct {
	Profile UserProfile
	Habits  []*Habit
}

func NewState(now time.Time) *State {
	return &State{
		Profile: NewUserProfile(now),
		Habits:  []*Habit{},
	}
}

// Normalize repairs loaded data so every domain invariant holds, then
// recomputes the profile counters.
func (s *State) Normalize(now time.Time) {
	if s.Habits == nil {
		s.Habits = []*Habit{}
	}

	kept := s.Habits[:0]
	for _, h := range s.Habits {
		if h == nil {
			continue
		}
		h.normalize(now)
		kept = append(kept, h)
	}
	s.Habits = kept

	if !s.Profile.JoinDate.IsZero() {
		s.Profile.JoinDate = DateOf(s.Profile.JoinDate)
	}
	s.Profile.Recompute(s.Habits, now)
}

func (s *State) Clone() *State {
	clone := &State{
		Profile: s.Profile,
		Habits:  make([]*Habit, 0, len(s.Habits)),
	}
	for _, h := range s.Habits {
		c := h.Clone()
		clone.Habits = append(clone.Habits, &c)
	}
	return clone
}
