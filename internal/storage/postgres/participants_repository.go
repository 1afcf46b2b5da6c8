package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratiba-events/server/internal/domain/participants"
)

const participantEmailConstraint = "participants_email_key"

type ParticipantRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const participantColumns = `p.id, p.ulid, p.name, p.email, p.created_at, p.updated_at`

func scanParticipant(row pgx.Row) (*participants.Participant, error) {
	var p participants.Participant
	if err := row.Scan(&p.ID, &p.ULID, &p.Name, &p.Email, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) GetByEmail(ctx context.Context, email string) (*participants.Participant, error) {
	return r.getOne(ctx, "get_participant_by_email", `
SELECT `+participantColumns+`
  FROM participants p
 WHERE p.email = $1
`, email)
}

func (r *ParticipantRepository) GetByULID(ctx context.Context, ulid string) (*participants.Participant, error) {
	return r.getOne(ctx, "get_participant", `
SELECT `+participantColumns+`
  FROM participants p
 WHERE p.ulid = $1
`, ulid)
}

func (r *ParticipantRepository) getOne(ctx context.Context, operation, sql string, arg string) (*participants.Participant, error) {
	start := time.Now()
	p, err := scanParticipant(pick(r.pool, r.tx).QueryRow(ctx, sql, arg))
	observe(operation, start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, participants.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// Create inserts a participant. A duplicate email yields
// participants.ErrConflict and leaves any surrounding transaction usable.
func (r *ParticipantRepository) Create(ctx context.Context, params participants.CreateParams) (*participants.Participant, error) {
	start := time.Now()
	var created *participants.Participant
	err := guardedInsert(ctx, r.pool, r.tx, func(q queryer) error {
		var err error
		created, err = scanParticipant(q.QueryRow(ctx, `
INSERT INTO participants AS p (ulid, name, email)
VALUES ($1, $2, $3)
RETURNING `+participantColumns,
			params.ULID, params.Name, params.Email,
		))
		return err
	})
	observe("insert_participant", start, err)
	if err != nil {
		if isUniqueViolation(err, participantEmailConstraint) {
			return nil, participants.ErrConflict
		}
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	return created, nil
}

func (r *ParticipantRepository) UpdateName(ctx context.Context, email string, name string) (*participants.Participant, error) {
	start := time.Now()
	p, err := scanParticipant(pick(r.pool, r.tx).QueryRow(ctx, `
UPDATE participants AS p
   SET name = $2, updated_at = now()
 WHERE p.email = $1
RETURNING `+participantColumns,
		email, name,
	))
	observe("update_participant", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, participants.ErrNotFound
		}
		return nil, fmt.Errorf("update participant: %w", err)
	}
	return p, nil
}

// Delete removes the participant; their registrations cascade.
func (r *ParticipantRepository) Delete(ctx context.Context, ulid string) error {
	start := time.Now()
	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM participants WHERE ulid = $1`, ulid)
	observe("delete_participant", start, err)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return participants.ErrNotFound
	}
	return nil
}
