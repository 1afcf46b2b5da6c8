package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratiba-events/server/internal/domain/events"
)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const eventColumns = `e.id, e.ulid, e.title, e.description, e.image_url, e.event_date, e.event_time,
       e.venue, e.charge, e.created_at, e.updated_at`

type eventRow struct {
	ID          string
	ULID        string
	Title       string
	Description string
	ImageURL    *string
	Date        pgtype.Date
	Time        pgtype.Time
	Venue       string
	Charge      string
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

func (row *eventRow) targets() []any {
	return []any{
		&row.ID, &row.ULID, &row.Title, &row.Description, &row.ImageURL, &row.Date, &row.Time,
		&row.Venue, &row.Charge, &row.CreatedAt, &row.UpdatedAt,
	}
}

func (row eventRow) toDomain() events.Event {
	event := events.Event{
		ID:          row.ID,
		ULID:        row.ULID,
		Title:       row.Title,
		Description: row.Description,
		ImageURL:    derefString(row.ImageURL),
		Venue:       row.Venue,
		Charge:      events.Charge(row.Charge),
	}
	if row.Date.Valid {
		d := row.Date.Time
		event.Date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	if row.Time.Valid {
		event.Time = events.ClockFromDuration(time.Duration(row.Time.Microseconds) * time.Microsecond)
	}
	if row.CreatedAt.Valid {
		event.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		event.UpdatedAt = row.UpdatedAt.Time
	}
	return event
}

func clockParam(c events.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: c.SinceMidnight().Microseconds(), Valid: true}
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	start := time.Now()
	var imageURL *string
	if params.ImageURL != "" {
		imageURL = &params.ImageURL
	}

	var row eventRow
	err := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO events AS e (ulid, title, description, image_url, event_date, event_time, venue, charge)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+eventColumns,
		params.ULID, params.Title, params.Description, imageURL,
		pgtype.Date{Time: params.Date, Valid: true}, clockParam(params.Time), params.Venue, string(params.Charge),
	).Scan(row.targets()...)
	observe("insert_event", start, err)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	event := row.toDomain()
	return &event, nil
}

func (r *EventRepository) GetByULID(ctx context.Context, ulid string) (*events.Event, error) {
	start := time.Now()
	var row eventRow
	err := pick(r.pool, r.tx).QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.ulid = $1
`, ulid).Scan(row.targets()...)
	observe("get_event", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	event := row.toDomain()
	return &event, nil
}

// List orders by date then time. The past/future split compares each
// event's wall-clock instant with now expressed in the configured zone.
func (r *EventRepository) List(ctx context.Context, filters events.Filters, pagination events.Pagination) ([]events.Event, error) {
	start := time.Now()
	loc := filters.Location
	if loc == nil {
		loc = time.UTC
	}
	now := filters.Now
	if now.IsZero() {
		now = time.Now()
	}
	window := filters.Window
	if window == "" {
		window = events.WindowAll
	}

	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE ($1 = 'all'
        OR ($1 = 'future' AND (e.event_date + e.event_time) > ($2::timestamptz AT TIME ZONE $3))
        OR ($1 = 'past' AND (e.event_date + e.event_time) <= ($2::timestamptz AT TIME ZONE $3)))
 ORDER BY e.event_date, e.event_time, e.ulid
 LIMIT $4 OFFSET $5
`, string(window), now, loc.String(), pagination.Limit, pagination.Offset)
	if err != nil {
		observe("list_events", start, err)
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var items []events.Event
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(row.targets()...); err != nil {
			observe("list_events", start, err)
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, row.toDomain())
	}
	err = rows.Err()
	observe("list_events", start, err)
	if err != nil {
		return nil, fmt.Errorf("list events rows: %w", err)
	}
	return items, nil
}

// Delete removes the event; registrations referencing it cascade.
func (r *EventRepository) Delete(ctx context.Context, ulid string) error {
	start := time.Now()
	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM events WHERE ulid = $1`, ulid)
	observe("delete_event", start, err)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
