package participants

import (
	"context"
	"errors"
	"fmt"

	"github.com/ratiba-events/server/internal/domain/ids"
	"github.com/ratiba-events/server/internal/validation"
)

// Resolver maps submitted identity fields to exactly one participant per
// email, creating the participant on first sight.
type Resolver struct {
	repo      Repository
	validator *validation.Validator
}

func NewResolver(repo Repository, v *validation.Validator) *Resolver {
	if v == nil {
		v = validation.New()
	}
	return &Resolver{repo: repo, validator: v}
}

// Resolve returns the participant owning f.Email. An existing participant is
// returned unchanged; the submitted name never overwrites the stored one.
// created reports whether this call inserted the participant.
func (r *Resolver) Resolve(ctx context.Context, f Fields) (*Participant, bool, error) {
	f, err := ValidateFields(r.validator, f)
	if err != nil {
		return nil, false, err
	}

	existing, err := r.repo.GetByEmail(ctx, f.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("lookup participant: %w", err)
	}

	ulid, err := ids.NewULID()
	if err != nil {
		return nil, false, fmt.Errorf("generate participant ulid: %w", err)
	}
	created, err := r.repo.Create(ctx, CreateParams{ULID: ulid, Name: f.Name, Email: f.Email})
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrConflict) {
		return nil, false, fmt.Errorf("create participant: %w", err)
	}

	// A concurrent request inserted the same email first.
	existing, err = r.repo.GetByEmail(ctx, f.Email)
	if err != nil {
		return nil, false, fmt.Errorf("lookup participant after conflict: %w", err)
	}
	return existing, false, nil
}
