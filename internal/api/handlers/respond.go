package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ratiba-events/server/internal/api/problem"
	"github.com/ratiba-events/server/internal/audit"
	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/participants"
	"github.com/ratiba-events/server/internal/domain/registrations"
)

// decodeError marks a request body that is not the expected JSON.
type decodeError struct {
	err error
}

func (e decodeError) Error() string {
	return "invalid JSON body: " + e.err.Error()
}

func (e decodeError) Unwrap() error {
	return e.err
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return decodeError{err: io.EOF}
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return maxErr
		}
		return decodeError{err: err}
	}
	if dec.More() {
		return decodeError{err: fmt.Errorf("unexpected data after JSON object")}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}

// writeError maps domain errors onto problem responses. Anything it does
// not recognise is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var (
		maxErr    *http.MaxBytesError
		decErr    decodeError
		partErr   participants.ValidationError
		eventErr  events.ValidationError
		filterErr events.FilterError
	)

	switch {
	case errors.As(err, &maxErr):
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadTooLarge, "Request body too large", err, env,
			problem.WithDetail(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)))
	case errors.As(err, &decErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Invalid request body", err, env)
	case errors.As(err, &partErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid participant", err, env,
			problem.WithDetail("participant details are invalid"), problem.WithErrors(partErr.Fields))
	case errors.As(err, &eventErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid event", err, env,
			problem.WithDetail("event details are invalid"), problem.WithErrors(eventErr.Fields))
	case errors.As(err, &filterErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid query", err, env,
			problem.WithDetail(filterErr.Error()), problem.WithErrors(map[string]string{filterErr.Field: filterErr.Message}))
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, env)
	case errors.Is(err, participants.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Participant not found", err, env)
	case errors.Is(err, registrations.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Registration not found", err, env)
	case errors.Is(err, registrations.ErrDuplicate):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeDuplicate, "Participant already registered for this event", err, env,
			problem.WithDetail("this email is already registered for the event"))
	case errors.Is(err, registrations.ErrEventClosed):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeEventClosed, "Event has already started", err, env,
			problem.WithDetail("registration is closed for events in the past"))
	case errors.Is(err, registrations.ErrInvalidTransition):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeInvalidTransition, "Status change not allowed", err, env,
			problem.WithDetail(err.Error()))
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}

// fieldError reports a single invalid request field as a validation problem.
func fieldError(w http.ResponseWriter, r *http.Request, field, message, env string) {
	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", nil, env,
		problem.WithDetail(fmt.Sprintf("%s: %s", field, message)),
		problem.WithErrors(map[string]string{field: message}))
}

func auditResult(l *audit.Logger, r *http.Request, action, resourceType, resourceID string, err error, details map[string]string) {
	status := audit.StatusSuccess
	if err != nil {
		status = audit.StatusFailure
		if details == nil {
			details = map[string]string{}
		}
		details["error"] = err.Error()
	}
	l.LogFromRequest(r, action, resourceType, resourceID, status, details)
}
