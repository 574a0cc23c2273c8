package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failed")
)

var (
	ErrHabitNameEmpty = fmt.Errorf("%w: habit name cannot be empty", ErrValidation)
	ErrInvalidIndex   = fmt.Errorf("%w: invalid habit index", ErrValidation)
	ErrInvalidFilter  = fmt.Errorf("%w: invalid habit filter (must be all, active or completed)", ErrValidation)

	ErrStoreCorrupt = fmt.Errorf("%w: habit store is unreadable or corrupt", ErrPersistence)
)
