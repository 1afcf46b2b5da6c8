package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/participants"
	"github.com/ratiba-events/server/internal/domain/registrations"
)

// memoryStore is a single-process registrations.Store. Transactions run
// inline without rollback, which the handler tests do not depend on.
type memoryStore struct {
	mu            sync.Mutex
	events        map[string]events.Event
	participants  map[string]participants.Participant // by email
	registrations map[string]registrations.Registration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		events:        map[string]events.Event{},
		participants:  map[string]participants.Participant{},
		registrations: map[string]registrations.Registration{},
	}
}

func (s *memoryStore) Events() events.Repository                { return memoryEvents{s} }
func (s *memoryStore) Participants() participants.Repository    { return memoryParticipants{s} }
func (s *memoryStore) Registrations() registrations.Repository { return memoryRegistrations{s} }

func (s *memoryStore) WithTx(ctx context.Context, fn func(context.Context, registrations.Store) error) error {
	return fn(ctx, s)
}

func (s *memoryStore) seedEvent(title string, date string, clock string) events.Event {
	d, err := events.ParseDate(date)
	if err != nil {
		panic(err)
	}
	c, err := events.ParseClock(clock)
	if err != nil {
		panic(err)
	}
	e, _ := s.Events().Create(context.Background(), events.CreateParams{
		ULID: ulid.Make().String(), Title: title, Description: "about " + title, Date: d, Time: c, Charge: events.ChargeFree,
	})
	return *e
}

type memoryEvents struct{ s *memoryStore }

func (r memoryEvents) Create(_ context.Context, p events.CreateParams) (*events.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	e := events.Event{
		ID: ulid.Make().String(), ULID: p.ULID, Title: p.Title, Description: p.Description, ImageURL: p.ImageURL,
		Date: p.Date, Time: p.Time, Venue: p.Venue, Charge: p.Charge, CreatedAt: now, UpdatedAt: now,
	}
	r.s.events[e.ULID] = e
	return &e, nil
}

func (r memoryEvents) GetByULID(_ context.Context, id string) (*events.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &e, nil
}

func (r memoryEvents) List(_ context.Context, f events.Filters, p events.Pagination) ([]events.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []events.Event
	for _, e := range r.s.events {
		open := events.IsOpen(e, f.Now, f.Location)
		if (f.Window == events.WindowPast && open) || (f.Window == events.WindowFuture && !open) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Instant(time.UTC).Before(out[j].Instant(time.UTC))
	})
	if p.Offset >= len(out) {
		return nil, nil
	}
	out = out[p.Offset:]
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func (r memoryEvents) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return events.ErrNotFound
	}
	delete(r.s.events, id)
	for k, reg := range r.s.registrations {
		if reg.EventID == e.ID {
			delete(r.s.registrations, k)
		}
	}
	return nil
}

type memoryParticipants struct{ s *memoryStore }

func (r memoryParticipants) GetByEmail(_ context.Context, email string) (*participants.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[email]
	if !ok {
		return nil, participants.ErrNotFound
	}
	return &p, nil
}

func (r memoryParticipants) GetByULID(_ context.Context, id string) (*participants.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.ULID == id {
			return &p, nil
		}
	}
	return nil, participants.ErrNotFound
}

func (r memoryParticipants) Create(_ context.Context, params participants.CreateParams) (*participants.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.participants[params.Email]; exists {
		return nil, participants.ErrConflict
	}
	now := time.Now().UTC()
	p := participants.Participant{ID: ulid.Make().String(), ULID: params.ULID, Name: params.Name, Email: params.Email, CreatedAt: now, UpdatedAt: now}
	r.s.participants[p.Email] = p
	return &p, nil
}

func (r memoryParticipants) UpdateName(_ context.Context, email string, name string) (*participants.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[email]
	if !ok {
		return nil, participants.ErrNotFound
	}
	p.Name = name
	p.UpdatedAt = time.Now().UTC()
	r.s.participants[email] = p
	return &p, nil
}

func (r memoryParticipants) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for email, p := range r.s.participants {
		if p.ULID != id {
			continue
		}
		delete(r.s.participants, email)
		for k, reg := range r.s.registrations {
			if reg.ParticipantID == p.ID {
				delete(r.s.registrations, k)
			}
		}
		return nil
	}
	return participants.ErrNotFound
}

type memoryRegistrations struct{ s *memoryStore }

func (r memoryRegistrations) GetByPair(_ context.Context, eventID, participantID string) (*registrations.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[eventID+"/"+participantID]
	if !ok {
		return nil, registrations.ErrNotFound
	}
	return &reg, nil
}

func (r memoryRegistrations) GetByULID(_ context.Context, id string) (*registrations.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range r.s.registrations {
		if reg.ULID == id {
			return &reg, nil
		}
	}
	return nil, registrations.ErrNotFound
}

func (r memoryRegistrations) Insert(_ context.Context, p registrations.InsertParams) (*registrations.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := p.EventID + "/" + p.ParticipantID
	if _, exists := r.s.registrations[key]; exists {
		return nil, registrations.ErrConflict
	}
	reg := registrations.Registration{
		ID: ulid.Make().String(), ULID: p.ULID, EventID: p.EventID, ParticipantID: p.ParticipantID,
		EventULID: r.s.eventULID(p.EventID), ParticipantULID: r.s.participantULID(p.ParticipantID),
		Status: p.Status, Timestamp: p.Timestamp, UpdatedAt: p.Timestamp,
	}
	r.s.registrations[key] = reg
	return &reg, nil
}

func (r memoryRegistrations) UpdateStatus(_ context.Context, id string, status registrations.Status) (*registrations.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, reg := range r.s.registrations {
		if reg.ULID == id {
			reg.Status = status
			reg.UpdatedAt = time.Now().UTC()
			r.s.registrations[k] = reg
			return &reg, nil
		}
	}
	return nil, registrations.ErrNotFound
}

func (r memoryRegistrations) ListByEvent(_ context.Context, eventID string) ([]registrations.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []registrations.Entry
	for _, reg := range r.s.registrations {
		if reg.EventID != eventID {
			continue
		}
		for _, p := range r.s.participants {
			if p.ID == reg.ParticipantID {
				out = append(out, registrations.Entry{Registration: reg, Participant: p})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Registration.Timestamp.Before(out[j].Registration.Timestamp)
	})
	return out, nil
}

// eventULID and participantULID expect the store lock to be held.
func (s *memoryStore) eventULID(id string) string {
	for _, e := range s.events {
		if e.ID == id {
			return e.ULID
		}
	}
	return ""
}

func (s *memoryStore) participantULID(id string) string {
	for _, p := range s.participants {
		if p.ID == id {
			return p.ULID
		}
	}
	return ""
}

// fixture wires the domain services over a memoryStore with a fixed clock.
type fixture struct {
	store         *memoryStore
	events        *EventsHandler
	registrations *RegistrationsHandler
	participants  *ParticipantsHandler
	now           time.Time
}

func newFixture() *fixture {
	store := newMemoryStore()
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zerolog.Nop()

	eventsService := events.NewService(store.Events(), time.UTC, logger).WithClock(clock)
	regService := registrations.NewService(store, time.UTC, logger).WithClock(clock)
	partService := participants.NewService(store.Participants(), logger)

	return &fixture{
		store:         store,
		events:        NewEventsHandler(eventsService, regService, "test", "https://ratiba.test"),
		registrations: NewRegistrationsHandler(regService, eventsService, "test", "https://ratiba.test"),
		participants:  NewParticipantsHandler(partService, "test"),
		now:           now,
	}
}
