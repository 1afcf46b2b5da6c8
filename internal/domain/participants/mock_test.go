package participants

import (
	"context"
	"sync"
	"time"
)

type mockRepository struct {
	getByEmailFn func(ctx context.Context, email string) (*Participant, error)
	getByULIDFn  func(ctx context.Context, ulid string) (*Participant, error)
	createFn     func(ctx context.Context, params CreateParams) (*Participant, error)
	updateNameFn func(ctx context.Context, email string, name string) (*Participant, error)
	deleteFn     func(ctx context.Context, ulid string) error
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*Participant, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, ErrNotFound
}

func (m *mockRepository) GetByULID(ctx context.Context, ulid string) (*Participant, error) {
	if m.getByULIDFn != nil {
		return m.getByULIDFn(ctx, ulid)
	}
	return nil, ErrNotFound
}

func (m *mockRepository) Create(ctx context.Context, params CreateParams) (*Participant, error) {
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return &Participant{ULID: params.ULID, Name: params.Name, Email: params.Email}, nil
}

func (m *mockRepository) UpdateName(ctx context.Context, email string, name string) (*Participant, error) {
	if m.updateNameFn != nil {
		return m.updateNameFn(ctx, email, name)
	}
	return nil, ErrNotFound
}

func (m *mockRepository) Delete(ctx context.Context, ulid string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ulid)
	}
	return nil
}

// memoryRepository enforces the unique email constraint the way the
// database does.
type memoryRepository struct {
	mu      sync.Mutex
	byEmail map[string]*Participant
	creates int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{byEmail: map[string]*Participant{}}
}

func (m *memoryRepository) GetByEmail(_ context.Context, email string) (*Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byEmail[email]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) GetByULID(_ context.Context, ulid string) (*Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byEmail {
		if p.ULID == ulid {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) Create(_ context.Context, params CreateParams) (*Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[params.Email]; ok {
		return nil, ErrConflict
	}
	now := time.Now()
	p := &Participant{ULID: params.ULID, Name: params.Name, Email: params.Email, CreatedAt: now, UpdatedAt: now}
	m.byEmail[params.Email] = p
	m.creates++
	copied := *p
	return &copied, nil
}

func (m *memoryRepository) UpdateName(_ context.Context, email string, name string) (*Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func (m *memoryRepository) Delete(_ context.Context, ulid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, p := range m.byEmail {
		if p.ULID == ulid {
			delete(m.byEmail, email)
			return nil
		}
	}
	return ErrNotFound
}
