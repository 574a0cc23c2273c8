package domain

import "context"

type StateRepository interface {
	// Load returns the stored profile and habits. A store that does not
	// exist yet is initialized with NewState defaults first.
	Load(ctx context.Context) (*State, error)

	// Save replaces the stored state with s as a single atomic write.
	Save(ctx context.Context, s *State) error
}
