package registrations

import (
	"context"
	"errors"
	"time"

	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/participants"
)

var (
	ErrNotFound          = errors.New("registration not found")
	ErrEventClosed       = errors.New("event has already taken place")
	ErrDuplicate         = errors.New("participant already registered for this event")
	ErrInvalidTransition = errors.New("invalid registration status transition")
	// ErrConflict is returned by repositories when an insert violates the
	// unique (event, participant) constraint.
	ErrConflict = errors.New("registration already exists for event and participant")
)

type Registration struct {
	ID              string
	ULID            string
	EventID         string
	EventULID       string
	ParticipantID   string
	ParticipantULID string
	Timestamp       time.Time
	Status          Status
	UpdatedAt       time.Time
}

type InsertParams struct {
	ULID          string
	EventID       string
	ParticipantID string
	Status        Status
	Timestamp     time.Time
}

// Entry pairs a registration with the participant holding it.
type Entry struct {
	Registration Registration
	Participant  participants.Participant
}

type Repository interface {
	GetByPair(ctx context.Context, eventID, participantID string) (*Registration, error)
	GetByULID(ctx context.Context, ulid string) (*Registration, error)
	Insert(ctx context.Context, params InsertParams) (*Registration, error)
	UpdateStatus(ctx context.Context, ulid string, status Status) (*Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]Entry, error)
}

// Store groups the repositories a registration touches so they can share
// one transaction.
type Store interface {
	Events() events.Repository
	Participants() participants.Repository
	Registrations() Repository
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
