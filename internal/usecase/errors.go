package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/bloodbowl-league/internal/domain/schedule"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrInvalidState          = errors.New("invalid state")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var (
	ErrDuplicateID              = fmt.Errorf("%w: duplicate id", ErrConflict)
	ErrInvalidRosterReference   = fmt.Errorf("%w: invalid roster reference", ErrInvalidInput)
	ErrMatchAlreadyPlayed       = fmt.Errorf("%w: match already played", ErrInvalidState)
	ErrMatchNotPlayed           = fmt.Errorf("%w: match not played", ErrInvalidState)
	ErrInsufficientParticipants = fmt.Errorf("%w: %w", ErrInvalidState, schedule.ErrInsufficientParticipants)
	ErrScheduleAlreadyExists    = fmt.Errorf("%w: schedule already exists", ErrInvalidState)
)
