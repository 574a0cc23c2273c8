package repository

import (
	"encoding/json"
	"fmt"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

// stateDocument is the on-disk shape shared by the file store and the cache.
type stateDocument struct {
	Profile profileDocument `json:"profile"`
	Habits  []habitDocument `json:"habits"`
}

type profileDocument struct {
	Name     string `json:"name"`
	JoinDate string `json:"joinDate"`
}

type habitDocument struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	TargetFrequency int      `json:"targetFrequency"`
	Completions     []string `json:"completions"`
	CreatedAt       string   `json:"createdAt"`
}

func encodeState(s *domain.State) ([]byte, error) {
	doc := stateDocument{
		Profile: profileDocument{
			Name:     s.Profile.Name,
			JoinDate: formatOptionalDate(s.Profile),
		},
		Habits: make([]habitDocument, 0, len(s.Habits)),
	}

	for _, h := range s.Habits {
		completions := make([]string, 0, len(h.Completions))
		for _, c := range h.Completions {
			completions = append(completions, domain.FormatDate(c))
		}
		doc.Habits = append(doc.Habits, habitDocument{
			ID:              h.ID,
			Name:            h.Name,
			TargetFrequency: h.TargetFrequency,
			Completions:     completions,
			CreatedAt:       domain.FormatDate(h.CreatedAt),
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

func formatOptionalDate(p domain.UserProfile) string {
	if p.JoinDate.IsZero() {
		return ""
	}
	return domain.FormatDate(p.JoinDate)
}

// decodeState parses a stored document. Missing optional fields are left
// zero for domain.State.Normalize to fill; malformed JSON or dates are
// reported as domain.ErrStoreCorrupt.
func decodeState(data []byte) (*domain.State, error) {
	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreCorrupt, err)
	}

	state := &domain.State{
		Profile: domain.UserProfile{Name: doc.Profile.Name},
		Habits:  make([]*domain.Habit, 0, len(doc.Habits)),
	}

	if doc.Profile.JoinDate != "" {
		join, err := domain.ParseDate(doc.Profile.JoinDate)
		if err != nil {
			return nil, fmt.Errorf("%w: profile joinDate: %w", domain.ErrStoreCorrupt, err)
		}
		state.Profile.JoinDate = join
	}

	for _, hd := range doc.Habits {
		h := &domain.Habit{
			ID:              hd.ID,
			Name:            hd.Name,
			TargetFrequency: hd.TargetFrequency,
		}

		if hd.CreatedAt != "" {
			created, err := domain.ParseDate(hd.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("%w: habit %s createdAt: %w", domain.ErrStoreCorrupt, hd.ID, err)
			}
			h.CreatedAt = created
		}

		for _, raw := range hd.Completions {
			c, err := domain.ParseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: habit %s completion: %w", domain.ErrStoreCorrupt, hd.ID, err)
			}
			h.Completions = append(h.Completions, c)
		}

		state.Habits = append(state.Habits, h)
	}

	return state, nil
}
