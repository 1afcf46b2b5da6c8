package events

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ratiba-events/server/internal/sanitize"
	"github.com/ratiba-events/server/internal/validation"
)

// EventInput is the organizer-supplied payload for a new event.
type EventInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=2048,httpurl"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Venue       string `json:"venue" validate:"max=255"`
	Charge      string `json:"charge" validate:"omitempty,oneof=free pay"`
}

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid event"
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
	return "invalid event: " + strings.Join(parts, "; ")
}

// ValidateEventInput sanitizes input and converts it into CreateParams.
// The returned params have no ULID assigned.
func ValidateEventInput(v *validation.Validator, input EventInput) (CreateParams, error) {
	input.Title = sanitize.Text(input.Title)
	input.Description = sanitize.Description(input.Description)
	input.Venue = sanitize.Text(input.Venue)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.Charge = strings.ToLower(strings.TrimSpace(input.Charge))

	fields, err := v.Struct(input)
	if err != nil {
		return CreateParams{}, err
	}
	if fields == nil {
		fields = map[string]string{}
	}

	var params CreateParams
	if _, bad := fields["date"]; !bad {
		date, err := ParseDate(input.Date)
		if err != nil {
			fields["date"] = "enter a valid date (YYYY-MM-DD)"
		}
		params.Date = date
	}
	if _, bad := fields["time"]; !bad {
		clock, err := ParseClock(input.Time)
		if err != nil {
			fields["time"] = "enter a valid time (HH:MM or HH:MM:SS)"
		}
		params.Time = clock
	}
	if len(fields) > 0 {
		return CreateParams{}, ValidationError{Fields: fields}
	}

	params.Title = input.Title
	params.Description = input.Description
	params.ImageURL = input.ImageURL
	params.Venue = input.Venue
	params.Charge = Charge(input.Charge)
	if params.Charge == "" {
		params.Charge = ChargeFree
	}
	return params, nil
}
