package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

// Charge describes whether attendance is free or paid. It is informational
// only; no payment flow exists.
type Charge string

const (
	ChargeFree Charge = "free"
	ChargePay  Charge = "pay"
)

type Event struct {
	ID          string
	ULID        string
	Title       string
	Description string
	ImageURL    string
	Date        time.Time // calendar date, midnight UTC
	Time        Clock
	Venue       string
	Charge      Charge
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateParams struct {
	ULID        string
	Title       string
	Description string
	ImageURL    string
	Date        time.Time
	Time        Clock
	Venue       string
	Charge      Charge
}

// Window selects events relative to the eligibility instant.
type Window string

const (
	WindowAll    Window = "all"
	WindowPast   Window = "past"
	WindowFuture Window = "future"
)

type Filters struct {
	Window   Window
	Now      time.Time
	Location *time.Location
}

type Pagination struct {
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	GetByULID(ctx context.Context, ulid string) (*Event, error)
	List(ctx context.Context, filters Filters, pagination Pagination) ([]Event, error)
	Delete(ctx context.Context, ulid string) error
}
