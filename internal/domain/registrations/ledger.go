package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ratiba-events/server/internal/domain/ids"
)

// Ledger keeps at most one registration per (event, participant) pair.
type Ledger struct {
	repo Repository
	now  func() time.Time
}

func NewLedger(repo Repository, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{repo: repo, now: now}
}

// Upsert records a registration for the pair with the desired status.
//
// A missing row is inserted and created is true. An existing row fails with
// ErrDuplicate unless desired is StatusRSVP, in which case the row is moved
// to rsvp in place (or returned as is when already rsvp). An insert that
// loses a race against a concurrent insert is handled the same way as an
// existing row.
func (l *Ledger) Upsert(ctx context.Context, eventID, participantID string, desired Status) (*Registration, bool, error) {
	existing, err := l.repo.GetByPair(ctx, eventID, participantID)
	if err == nil {
		reg, err := l.applyExisting(ctx, existing, desired)
		return reg, false, err
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("lookup registration: %w", err)
	}

	ulid, err := ids.NewULID()
	if err != nil {
		return nil, false, fmt.Errorf("generate registration ulid: %w", err)
	}
	inserted, err := l.repo.Insert(ctx, InsertParams{
		ULID:          ulid,
		EventID:       eventID,
		ParticipantID: participantID,
		Status:        desired,
		Timestamp:     l.now(),
	})
	if err == nil {
		return inserted, true, nil
	}
	if !errors.Is(err, ErrConflict) {
		return nil, false, fmt.Errorf("insert registration: %w", err)
	}
	if desired != StatusRSVP {
		return nil, false, ErrDuplicate
	}

	existing, err = l.repo.GetByPair(ctx, eventID, participantID)
	if err != nil {
		return nil, false, fmt.Errorf("lookup registration after conflict: %w", err)
	}
	reg, err := l.applyExisting(ctx, existing, desired)
	return reg, false, err
}

func (l *Ledger) applyExisting(ctx context.Context, existing *Registration, desired Status) (*Registration, error) {
	if desired != StatusRSVP {
		return nil, ErrDuplicate
	}
	if existing.Status == StatusRSVP {
		return existing, nil
	}
	updated, err := l.repo.UpdateStatus(ctx, existing.ULID, StatusRSVP)
	if err != nil {
		return nil, fmt.Errorf("promote registration to rsvp: %w", err)
	}
	return updated, nil
}
