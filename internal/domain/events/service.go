package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ratiba-events/server/internal/domain/ids"
	"github.com/ratiba-events/server/internal/validation"
)

type Service struct {
	repo      Repository
	validator *validation.Validator
	loc       *time.Location
	now       func() time.Time
	logger    zerolog.Logger
}

// NewService returns an events service that evaluates eligibility in loc.
func NewService(repo Repository, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		validator: validation.New(),
		loc:       loc,
		now:       time.Now,
		logger:    logger.With().Str("component", "events").Logger(),
	}
}

// WithClock replaces the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Now() time.Time {
	return s.now()
}

// IsOpen evaluates eligibility for e against the service clock.
func (s *Service) IsOpen(e Event) bool {
	return IsOpen(e, s.now(), s.loc)
}

func (s *Service) Create(ctx context.Context, input EventInput) (*Event, error) {
	params, err := ValidateEventInput(s.validator, input)
	if err != nil {
		return nil, err
	}
	ulid, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate event ulid: %w", err)
	}
	params.ULID = ulid

	event, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info().
		Str("event_id", event.ULID).
		Str("date", FormatDate(event.Date)).
		Str("time", event.Time.String()).
		Msg("event created")
	return event, nil
}

func (s *Service) GetByULID(ctx context.Context, ulid string) (*Event, error) {
	ulid = ids.Normalize(ulid)
	if err := ids.ValidateULID(ulid); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByULID(ctx, ulid)
}

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) ([]Event, error) {
	if filters.Window == "" {
		filters.Window = WindowAll
	}
	filters.Now = s.now()
	filters.Location = s.loc
	if pagination.Limit <= 0 {
		pagination.Limit = defaultLimit
	}
	return s.repo.List(ctx, filters, pagination)
}

func (s *Service) Delete(ctx context.Context, ulid string) error {
	ulid = ids.Normalize(ulid)
	if err := ids.ValidateULID(ulid); err != nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, ulid); err != nil {
		return err
	}
	s.logger.Info().Str("event_id", ulid).Msg("event deleted")
	return nil
}
