package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratiba-events/server/internal/domain/registrations"
)

const registrationPairConstraint = "registrations_event_participant_key"

type RegistrationRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const registrationSelect = `
SELECT r.id, r.ulid, r.event_id, e.ulid, r.participant_id, p.ulid, r.registered_at, r.status, r.updated_at
  FROM registrations r
  JOIN events e ON e.id = r.event_id
  JOIN participants p ON p.id = r.participant_id
`

func scanRegistration(row pgx.Row) (*registrations.Registration, error) {
	var reg registrations.Registration
	var status string
	if err := row.Scan(
		&reg.ID,
		&reg.ULID,
		&reg.EventID,
		&reg.EventULID,
		&reg.ParticipantID,
		&reg.ParticipantULID,
		&reg.Timestamp,
		&status,
		&reg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	reg.Status = registrations.Status(status)
	return &reg, nil
}

func (r *RegistrationRepository) GetByPair(ctx context.Context, eventID, participantID string) (*registrations.Registration, error) {
	start := time.Now()
	reg, err := scanRegistration(pick(r.pool, r.tx).QueryRow(ctx,
		registrationSelect+` WHERE r.event_id = $1 AND r.participant_id = $2`,
		eventID, participantID,
	))
	observe("get_registration_by_pair", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrNotFound
		}
		return nil, fmt.Errorf("get registration by pair: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) GetByULID(ctx context.Context, ulid string) (*registrations.Registration, error) {
	start := time.Now()
	reg, err := scanRegistration(pick(r.pool, r.tx).QueryRow(ctx,
		registrationSelect+` WHERE r.ulid = $1`,
		ulid,
	))
	observe("get_registration", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// Insert adds a row for the pair. A concurrent insert for the same pair
// yields registrations.ErrConflict and leaves any surrounding transaction
// usable.
func (r *RegistrationRepository) Insert(ctx context.Context, params registrations.InsertParams) (*registrations.Registration, error) {
	start := time.Now()
	var reg registrations.Registration
	var status string
	err := guardedInsert(ctx, r.pool, r.tx, func(q queryer) error {
		return q.QueryRow(ctx, `
INSERT INTO registrations (ulid, event_id, participant_id, registered_at, status, updated_at)
VALUES ($1, $2, $3, $4, $5, $4)
RETURNING id, ulid, event_id, participant_id, registered_at, status, updated_at
`,
			params.ULID, params.EventID, params.ParticipantID, params.Timestamp, string(params.Status),
		).Scan(&reg.ID, &reg.ULID, &reg.EventID, &reg.ParticipantID, &reg.Timestamp, &status, &reg.UpdatedAt)
	})
	observe("insert_registration", start, err)
	if err != nil {
		if isUniqueViolation(err, registrationPairConstraint) {
			return nil, registrations.ErrConflict
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	reg.Status = registrations.Status(status)
	return &reg, nil
}

// UpdateStatus changes status in place. registered_at is never touched.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, ulid string, status registrations.Status) (*registrations.Registration, error) {
	start := time.Now()
	reg, err := scanRegistration(pick(r.pool, r.tx).QueryRow(ctx, `
WITH updated AS (
  UPDATE registrations
     SET status = $2, updated_at = now()
   WHERE ulid = $1
  RETURNING id, ulid, event_id, participant_id, registered_at, status, updated_at
)
SELECT r.id, r.ulid, r.event_id, e.ulid, r.participant_id, p.ulid, r.registered_at, r.status, r.updated_at
  FROM updated r
  JOIN events e ON e.id = r.event_id
  JOIN participants p ON p.id = r.participant_id
`, ulid, string(status)))
	observe("update_registration_status", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrNotFound
		}
		return nil, fmt.Errorf("update registration status: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]registrations.Entry, error) {
	start := time.Now()
	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT r.id, r.ulid, r.event_id, e.ulid, r.participant_id, p.ulid, r.registered_at, r.status, r.updated_at,
       p.name, p.email, p.created_at, p.updated_at
  FROM registrations r
  JOIN events e ON e.id = r.event_id
  JOIN participants p ON p.id = r.participant_id
 WHERE r.event_id = $1
 ORDER BY r.registered_at, r.ulid
`, eventID)
	if err != nil {
		observe("list_event_registrations", start, err)
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var entries []registrations.Entry
	for rows.Next() {
		var entry registrations.Entry
		var status string
		reg := &entry.Registration
		p := &entry.Participant
		if err := rows.Scan(
			&reg.ID, &reg.ULID, &reg.EventID, &reg.EventULID, &reg.ParticipantID, &reg.ParticipantULID,
			&reg.Timestamp, &status, &reg.UpdatedAt,
			&p.Name, &p.Email, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			observe("list_event_registrations", start, err)
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.Status = registrations.Status(status)
		p.ID = reg.ParticipantID
		p.ULID = reg.ParticipantULID
		entries = append(entries, entry)
	}
	err = rows.Err()
	observe("list_event_registrations", start, err)
	if err != nil {
		return nil, fmt.Errorf("list registrations rows: %w", err)
	}
	return entries, nil
}
