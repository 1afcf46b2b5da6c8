package participants

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ratiba-events/server/internal/domain/ids"
	"github.com/ratiba-events/server/internal/validation"
)

type UpdateParams struct {
	Name *string
}

type Service struct {
	repo      Repository
	validator *validation.Validator
	logger    zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validation.New(),
		logger:    logger.With().Str("component", "participants").Logger(),
	}
}

func (s *Service) Get(ctx context.Context, ulid string) (*Participant, error) {
	ulid = ids.Normalize(ulid)
	if err := ids.ValidateULID(ulid); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByULID(ctx, ulid)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Participant, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}

// Update is the only path that changes a participant's name.
func (s *Service) Update(ctx context.Context, email string, params UpdateParams) (*Participant, error) {
	var name string
	if params.Name != nil {
		name = *params.Name
	}
	fields, err := ValidateFields(s.validator, Fields{Email: email, Name: name})
	if err != nil {
		return nil, err
	}
	if params.Name == nil {
		return s.repo.GetByEmail(ctx, fields.Email)
	}

	updated, err := s.repo.UpdateName(ctx, fields.Email, fields.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("participant_id", updated.ULID).Msg("participant updated")
	return updated, nil
}

// Delete removes the participant and, through the storage cascade, every
// registration they hold.
func (s *Service) Delete(ctx context.Context, ulid string) error {
	ulid = ids.Normalize(ulid)
	if err := ids.ValidateULID(ulid); err != nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, ulid); err != nil {
		return err
	}
	s.logger.Info().Str("participant_id", ulid).Msg("participant deleted")
	return nil
}
