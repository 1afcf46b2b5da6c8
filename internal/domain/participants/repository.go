package participants

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("participant not found")
	// ErrConflict is returned by repositories when an insert violates the
	// unique email constraint.
	ErrConflict = errors.New("participant email already exists")
)

type Participant struct {
	ID        string
	ULID      string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateParams struct {
	ULID  string
	Name  string
	Email string
}

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*Participant, error)
	GetByULID(ctx context.Context, ulid string) (*Participant, error)
	Create(ctx context.Context, params CreateParams) (*Participant, error)
	UpdateName(ctx context.Context, email string, name string) (*Participant, error)
	Delete(ctx context.Context, ulid string) error
}
