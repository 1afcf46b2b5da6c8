package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ratiba-events/server/internal/domain/participants"
	"github.com/ratiba-events/server/internal/domain/registrations"
)

func TestRegistrationRepositoryInsertConflict(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &RegistrationRepository{pool: pool}
	event := insertEvent(t, ctx, pool, "Meetup", "2099-01-01", "18:00")
	participant := insertParticipant(t, ctx, pool, "Amina", "amina@example.com")
	ts := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	inserted, err := repo.Insert(ctx, registrations.InsertParams{
		ULID: ulid.Make().String(), EventID: event.ID, ParticipantID: participant.ID,
		Status: registrations.StatusPending, Timestamp: ts,
	})
	require.NoError(t, err)
	require.Equal(t, registrations.StatusPending, inserted.Status)
	require.True(t, ts.Equal(inserted.Timestamp))

	_, err = repo.Insert(ctx, registrations.InsertParams{
		ULID: ulid.Make().String(), EventID: event.ID, ParticipantID: participant.ID,
		Status: registrations.StatusRSVP, Timestamp: ts,
	})
	require.ErrorIs(t, err, registrations.ErrConflict)

	got, err := repo.GetByPair(ctx, event.ID, participant.ID)
	require.NoError(t, err)
	require.Equal(t, inserted.ULID, got.ULID)
	require.Equal(t, event.ULID, got.EventULID)
	require.Equal(t, participant.ULID, got.ParticipantULID)
}

func TestRegistrationRepositoryUpdateStatusKeepsTimestamp(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &RegistrationRepository{pool: pool}
	event := insertEvent(t, ctx, pool, "Meetup", "2099-01-01", "18:00")
	participant := insertParticipant(t, ctx, pool, "Amina", "amina@example.com")
	ts := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	inserted, err := repo.Insert(ctx, registrations.InsertParams{
		ULID: ulid.Make().String(), EventID: event.ID, ParticipantID: participant.ID,
		Status: registrations.StatusPending, Timestamp: ts,
	})
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, inserted.ULID, registrations.StatusRSVP)

	require.NoError(t, err)
	require.Equal(t, registrations.StatusRSVP, updated.Status)
	require.True(t, ts.Equal(updated.Timestamp))
	require.Equal(t, event.ULID, updated.EventULID)

	_, err = repo.UpdateStatus(ctx, ulid.Make().String(), registrations.StatusRSVP)
	require.ErrorIs(t, err, registrations.ErrNotFound)
}

func TestRegistrationRepositoryListByEvent(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &RegistrationRepository{pool: pool}
	event := insertEvent(t, ctx, pool, "Meetup", "2099-01-01", "18:00")
	other := insertEvent(t, ctx, pool, "Other", "2099-02-01", "18:00")
	base := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	for i, email := range []string{"b@example.com", "a@example.com"} {
		p := insertParticipant(t, ctx, pool, email, email)
		_, err := repo.Insert(ctx, registrations.InsertParams{
			ULID: ulid.Make().String(), EventID: event.ID, ParticipantID: p.ID,
			Status: registrations.StatusPending, Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	p := insertParticipant(t, ctx, pool, "elsewhere", "c@example.com")
	_, err := repo.Insert(ctx, registrations.InsertParams{
		ULID: ulid.Make().String(), EventID: other.ID, ParticipantID: p.ID,
		Status: registrations.StatusPending, Timestamp: base,
	})
	require.NoError(t, err)

	entries, err := repo.ListByEvent(ctx, event.ID)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "b@example.com", entries[0].Participant.Email)
	require.Equal(t, "a@example.com", entries[1].Participant.Email)
	require.Equal(t, entries[0].Registration.ParticipantULID, entries[0].Participant.ULID)
}

func newPostgresService(t *testing.T) (*registrations.Service, *Repository) {
	t.Helper()
	pool, _ := setupPostgres(t)
	store, err := NewRepository(pool)
	require.NoError(t, err)
	return registrations.NewService(store, time.UTC, zerolog.Nop()), store
}

func TestServiceConcurrentRegisterSamePair(t *testing.T) {
	ctx := context.Background()
	svc, store := newPostgresService(t)
	event := insertEvent(t, ctx, store.pool, "Crowded", "2099-01-01", "18:00")

	const workers = 12
	results := make([]error, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, results[i] = svc.Register(ctx, event.ULID, participants.Fields{Name: "Crowd", Email: "crowd@example.com"})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		require.True(t, errors.Is(err, registrations.ErrDuplicate), "unexpected error: %v", err)
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, countRows(t, ctx, store.pool, "registrations"))
	require.Equal(t, 1, countRows(t, ctx, store.pool, "participants"))
}

func TestServiceConcurrentRSVPSamePair(t *testing.T) {
	ctx := context.Background()
	svc, store := newPostgresService(t)
	event := insertEvent(t, ctx, store.pool, "Crowded", "2099-01-01", "18:00")

	const workers = 12
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			out, err := svc.RSVP(ctx, event.ULID, participants.Fields{Email: "crowd@example.com"})
			if err != nil {
				return err
			}
			if out.Registration.Status != registrations.StatusRSVP {
				return errors.New("rsvp did not converge to rsvp status")
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	require.Equal(t, 1, countRows(t, ctx, store.pool, "registrations"))
	require.Equal(t, 1, countRows(t, ctx, store.pool, "participants"))
}

func TestServiceRegisterThenRSVPAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	svc, store := newPostgresService(t)
	event := insertEvent(t, ctx, store.pool, "Meetup", "2099-01-01", "18:00")
	past := insertEvent(t, ctx, store.pool, "Ancient", "2000-01-01", "00:00")
	fields := participants.Fields{Name: "Amina", Email: "amina@example.com"}

	first, err := svc.Register(ctx, event.ULID, fields)
	require.NoError(t, err)
	require.True(t, first.Created)

	_, err = svc.Register(ctx, event.ULID, fields)
	require.ErrorIs(t, err, registrations.ErrDuplicate)

	promoted, err := svc.RSVP(ctx, event.ULID, fields)
	require.NoError(t, err)
	require.False(t, promoted.Created)
	require.Equal(t, first.Registration.ULID, promoted.Registration.ULID)
	require.Equal(t, registrations.StatusRSVP, promoted.Registration.Status)

	_, err = svc.RSVP(ctx, past.ULID, fields)
	require.ErrorIs(t, err, registrations.ErrEventClosed)
	require.Equal(t, 1, countRows(t, ctx, store.pool, "registrations"))
}
