package participants

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ratiba-events/server/internal/sanitize"
	"github.com/ratiba-events/server/internal/validation"
)

// Fields identify a participant. Email is the lookup key; Name is optional.
type Fields struct {
	Name  string `json:"name" validate:"max=100"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type ValidationError struct {
	Fields map[string]string
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid participant"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid participant: " + strings.Join(parts, "; ")
}

// ValidateFields trims and sanitizes f and checks it against the field rules.
// Email case is preserved.
func ValidateFields(v *validation.Validator, f Fields) (Fields, error) {
	f.Name = sanitize.Text(f.Name)
	f.Email = strings.TrimSpace(f.Email)

	fields, err := v.Struct(f)
	if err != nil {
		return Fields{}, err
	}
	if len(fields) > 0 {
		return Fields{}, ValidationError{Fields: fields}
	}
	return f, nil
}
