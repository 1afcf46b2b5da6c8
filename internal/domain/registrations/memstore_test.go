package registrations

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/participants"
)

// memState holds rows with the same uniqueness rules as the database schema.
type memState struct {
	mu            sync.Mutex
	seq           int
	events        map[string]events.Event             // by ULID
	participants  map[string]participants.Participant // by email
	registrations map[string]Registration             // by event ID + participant ID
}

func (s *memState) nextID() string {
	s.seq++
	return fmt.Sprintf("id-%04d", s.seq)
}

func pairKey(eventID, participantID string) string {
	return eventID + "/" + participantID
}

type memStore struct {
	state *memState
	// beforeInsert runs ahead of each registration insert, outside the lock.
	beforeInsert func()
	// insertErr, when set, is returned from registration inserts.
	insertErr error
	txCount   int
	// undo is non-nil inside WithTx and collects compensating writes.
	undo *[]func()
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		events:        map[string]events.Event{},
		participants:  map[string]participants.Participant{},
		registrations: map[string]Registration{},
	}}
}

func (m *memStore) Events() events.Repository             { return memEvents{m} }
func (m *memStore) Participants() participants.Repository { return memParticipants{m} }
func (m *memStore) Registrations() Repository             { return memRegistrations{m} }

// WithTx reverts the writes made through tx when fn fails. Writes by other
// callers are left alone.
func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	m.state.mu.Lock()
	m.txCount++
	m.state.mu.Unlock()

	var undo []func()
	tx := &memStore{state: m.state, beforeInsert: m.beforeInsert, insertErr: m.insertErr, undo: &undo}
	if err := fn(ctx, tx); err != nil {
		m.state.mu.Lock()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		m.state.mu.Unlock()
		return err
	}
	return nil
}

// record must be called with the state lock held.
func (m *memStore) record(fn func()) {
	if m.undo != nil {
		*m.undo = append(*m.undo, fn)
	}
}

func (m *memStore) addEvent(ulid string, date time.Time, clock events.Clock) events.Event {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	e := events.Event{ID: m.state.nextID(), ULID: ulid, Title: "Event " + ulid, Date: date, Time: clock, Charge: events.ChargeFree}
	m.state.events[ulid] = e
	return e
}

// insertRow writes a registration directly, bypassing hooks.
func (m *memStore) insertRow(eventID, participantID string, status Status) {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.registrations[pairKey(eventID, participantID)] = Registration{
		ID:            m.state.nextID(),
		ULID:          fmt.Sprintf("01J0000000000000000000%04d", m.state.seq),
		EventID:       eventID,
		ParticipantID: participantID,
		Status:        status,
		Timestamp:     time.Now(),
	}
}

func (m *memStore) registrationCount() int {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return len(m.state.registrations)
}

func (m *memStore) participantCount() int {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return len(m.state.participants)
}

type memEvents struct{ m *memStore }

func (r memEvents) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	e := r.m.addEvent(params.ULID, params.Date, params.Time)
	return &e, nil
}

func (r memEvents) GetByULID(_ context.Context, ulid string) (*events.Event, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	e, ok := r.m.state.events[ulid]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &e, nil
}

func (r memEvents) List(context.Context, events.Filters, events.Pagination) ([]events.Event, error) {
	return nil, nil
}

func (r memEvents) Delete(_ context.Context, ulid string) error {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	delete(r.m.state.events, ulid)
	return nil
}

type memParticipants struct{ m *memStore }

func (r memParticipants) GetByEmail(_ context.Context, email string) (*participants.Participant, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	p, ok := r.m.state.participants[email]
	if !ok {
		return nil, participants.ErrNotFound
	}
	return &p, nil
}

func (r memParticipants) GetByULID(_ context.Context, ulid string) (*participants.Participant, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	for _, p := range r.m.state.participants {
		if p.ULID == ulid {
			return &p, nil
		}
	}
	return nil, participants.ErrNotFound
}

func (r memParticipants) Create(_ context.Context, params participants.CreateParams) (*participants.Participant, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	if _, ok := r.m.state.participants[params.Email]; ok {
		return nil, participants.ErrConflict
	}
	p := participants.Participant{ID: r.m.state.nextID(), ULID: params.ULID, Name: params.Name, Email: params.Email}
	r.m.state.participants[params.Email] = p
	r.m.record(func() { delete(r.m.state.participants, params.Email) })
	return &p, nil
}

func (r memParticipants) UpdateName(_ context.Context, email string, name string) (*participants.Participant, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	p, ok := r.m.state.participants[email]
	if !ok {
		return nil, participants.ErrNotFound
	}
	p.Name = name
	r.m.state.participants[email] = p
	return &p, nil
}

func (r memParticipants) Delete(_ context.Context, ulid string) error {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	for email, p := range r.m.state.participants {
		if p.ULID == ulid {
			delete(r.m.state.participants, email)
			return nil
		}
	}
	return participants.ErrNotFound
}

type memRegistrations struct{ m *memStore }

func (r memRegistrations) GetByPair(_ context.Context, eventID, participantID string) (*Registration, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	reg, ok := r.m.state.registrations[pairKey(eventID, participantID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &reg, nil
}

func (r memRegistrations) GetByULID(_ context.Context, ulid string) (*Registration, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	for _, reg := range r.m.state.registrations {
		if reg.ULID == ulid {
			return r.withULIDs(reg), nil
		}
	}
	return nil, ErrNotFound
}

func (r memRegistrations) withULIDs(reg Registration) *Registration {
	for _, e := range r.m.state.events {
		if e.ID == reg.EventID {
			reg.EventULID = e.ULID
		}
	}
	for _, p := range r.m.state.participants {
		if p.ID == reg.ParticipantID {
			reg.ParticipantULID = p.ULID
		}
	}
	return &reg
}

func (r memRegistrations) Insert(_ context.Context, params InsertParams) (*Registration, error) {
	if r.m.beforeInsert != nil {
		r.m.beforeInsert()
	}
	if r.m.insertErr != nil {
		return nil, r.m.insertErr
	}
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	key := pairKey(params.EventID, params.ParticipantID)
	if _, ok := r.m.state.registrations[key]; ok {
		return nil, ErrConflict
	}
	reg := Registration{
		ID:            r.m.state.nextID(),
		ULID:          params.ULID,
		EventID:       params.EventID,
		ParticipantID: params.ParticipantID,
		Status:        params.Status,
		Timestamp:     params.Timestamp,
		UpdatedAt:     params.Timestamp,
	}
	r.m.state.registrations[key] = reg
	r.m.record(func() { delete(r.m.state.registrations, key) })
	return &reg, nil
}

func (r memRegistrations) UpdateStatus(_ context.Context, ulid string, status Status) (*Registration, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	for key, reg := range r.m.state.registrations {
		if reg.ULID == ulid {
			previous := reg
			r.m.record(func() { r.m.state.registrations[key] = previous })
			reg.Status = status
			reg.UpdatedAt = time.Now()
			r.m.state.registrations[key] = reg
			return r.withULIDs(reg), nil
		}
	}
	return nil, ErrNotFound
}

func (r memRegistrations) ListByEvent(_ context.Context, eventID string) ([]Entry, error) {
	r.m.state.mu.Lock()
	defer r.m.state.mu.Unlock()
	var entries []Entry
	for _, reg := range r.m.state.registrations {
		if reg.EventID != eventID {
			continue
		}
		entry := Entry{Registration: *r.withULIDs(reg)}
		for _, p := range r.m.state.participants {
			if p.ID == reg.ParticipantID {
				entry.Participant = p
			}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Registration.Timestamp.Before(entries[j].Registration.Timestamp)
	})
	return entries, nil
}
