package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/ids"
	"github.com/ratiba-events/server/internal/domain/participants"
	"github.com/ratiba-events/server/internal/metrics"
	"github.com/ratiba-events/server/internal/validation"
)

const tracerName = "github.com/ratiba-events/server/internal/domain/registrations"

// Outcome is the result of a register or RSVP submission.
type Outcome struct {
	Registration       Registration
	Event              events.Event
	Participant        participants.Participant
	Created            bool
	ParticipantCreated bool
}

// Detail is a registration together with the records it references.
type Detail struct {
	Registration Registration
	Event        events.Event
	Participant  participants.Participant
}

type Service struct {
	store     Store
	validator *validation.Validator
	loc       *time.Location
	now       func() time.Time
	logger    zerolog.Logger
}

// NewService builds the registration orchestrator. Eligibility is evaluated
// in loc against the service clock on every submission.
func NewService(store Store, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:     store,
		validator: validation.New(),
		loc:       loc,
		now:       time.Now,
		logger:    logger.With().Str("component", "registrations").Logger(),
	}
}

// WithClock replaces the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register records a plain registration. A participant already registered
// for the event gets ErrDuplicate.
func (s *Service) Register(ctx context.Context, eventULID string, fields participants.Fields) (*Outcome, error) {
	return s.submit(ctx, "register", eventULID, fields, StatusPending)
}

// RSVP records an RSVP, promoting an existing registration for the same
// participant in place.
func (s *Service) RSVP(ctx context.Context, eventULID string, fields participants.Fields) (*Outcome, error) {
	return s.submit(ctx, "rsvp", eventULID, fields, StatusRSVP)
}

func (s *Service) submit(ctx context.Context, operation, eventULID string, fields participants.Fields, desired Status) (*Outcome, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "registrations."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("event.id", eventULID))

	outcome, err := s.doSubmit(ctx, eventULID, fields, desired)
	label := outcomeLabel(outcome, err)
	metrics.RecordRegistration(operation, label)
	span.SetAttributes(attribute.String("registration.outcome", label))

	log := s.logger.With().Str("operation", operation).Str("event_id", eventULID).Str("outcome", label).Logger()
	if err != nil {
		if label == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Error().Err(err).Msg("registration failed")
		} else {
			log.Debug().Err(err).Msg("registration rejected")
		}
		return nil, err
	}

	log.Info().
		Str("registration_id", outcome.Registration.ULID).
		Str("participant_id", outcome.Participant.ULID).
		Str("status", string(outcome.Registration.Status)).
		Bool("participant_created", outcome.ParticipantCreated).
		Msg("registration recorded")
	return outcome, nil
}

func (s *Service) doSubmit(ctx context.Context, eventULID string, fields participants.Fields, desired Status) (*Outcome, error) {
	event, err := s.loadEvent(ctx, s.store, eventULID)
	if err != nil {
		return nil, err
	}
	if !events.IsOpen(*event, s.now(), s.loc) {
		return nil, ErrEventClosed
	}

	var outcome *Outcome
	err = s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		participant, participantCreated, err := participants.NewResolver(tx.Participants(), s.validator).Resolve(ctx, fields)
		if err != nil {
			return err
		}
		reg, created, err := NewLedger(tx.Registrations(), s.now).Upsert(ctx, event.ID, participant.ID, desired)
		if err != nil {
			return err
		}
		reg.EventULID = event.ULID
		reg.ParticipantULID = participant.ULID
		outcome = &Outcome{
			Registration:       *reg,
			Event:              *event,
			Participant:        *participant,
			Created:            created,
			ParticipantCreated: participantCreated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *Service) loadEvent(ctx context.Context, store Store, eventULID string) (*events.Event, error) {
	eventULID = ids.Normalize(eventULID)
	if err := ids.ValidateULID(eventULID); err != nil {
		return nil, events.ErrNotFound
	}
	return store.Events().GetByULID(ctx, eventULID)
}

// Get returns a registration with its event and participant.
func (s *Service) Get(ctx context.Context, ulid string) (*Detail, error) {
	ulid = ids.Normalize(ulid)
	if err := ids.ValidateULID(ulid); err != nil {
		return nil, ErrNotFound
	}
	reg, err := s.store.Registrations().GetByULID(ctx, ulid)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, s.store, reg)
}

// UpdateStatus applies an organizer status change. See CanTransition.
func (s *Service) UpdateStatus(ctx context.Context, ulid string, status Status) (*Detail, error) {
	ulid = ids.Normalize(ulid)
	if err := ids.ValidateULID(ulid); err != nil {
		return nil, ErrNotFound
	}

	var detail *Detail
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		current, err := tx.Registrations().GetByULID(ctx, ulid)
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
		}
		updated := current
		if current.Status != status {
			updated, err = tx.Registrations().UpdateStatus(ctx, ulid, status)
			if err != nil {
				return err
			}
		}
		detail, err = s.detail(ctx, tx, updated)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("registration_id", ulid).
		Str("status", string(status)).
		Msg("registration status updated")
	return detail, nil
}

// ListParticipants returns the registrations for an event ordered by
// registration timestamp.
func (s *Service) ListParticipants(ctx context.Context, eventULID string) (*events.Event, []Entry, error) {
	event, err := s.loadEvent(ctx, s.store, eventULID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.store.Registrations().ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, nil, err
	}
	return event, entries, nil
}

func (s *Service) detail(ctx context.Context, store Store, reg *Registration) (*Detail, error) {
	event, err := store.Events().GetByULID(ctx, reg.EventULID)
	if err != nil {
		return nil, fmt.Errorf("load registration event: %w", err)
	}
	participant, err := store.Participants().GetByULID(ctx, reg.ParticipantULID)
	if err != nil {
		return nil, fmt.Errorf("load registration participant: %w", err)
	}
	return &Detail{Registration: *reg, Event: *event, Participant: *participant}, nil
}

func outcomeLabel(outcome *Outcome, err error) string {
	var verr participants.ValidationError
	switch {
	case err == nil && outcome.Created:
		return "created"
	case err == nil:
		return "rsvp_existing"
	case errors.Is(err, events.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEventClosed):
		return "closed"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "error"
	}
}
