package handlers

import (
	"net/http"
	"strings"

	"github.com/ratiba-events/server/internal/audit"
	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/ids"
	"github.com/ratiba-events/server/internal/domain/participants"
	"github.com/ratiba-events/server/internal/domain/registrations"
)

type RegistrationsHandler struct {
	Service *registrations.Service
	Events  *events.Service
	Audit   *audit.Logger
	Env     string
	BaseURL string
}

func NewRegistrationsHandler(service *registrations.Service, eventsService *events.Service, env string, baseURL string) *RegistrationsHandler {
	return &RegistrationsHandler{Service: service, Events: eventsService, Env: env, BaseURL: baseURL}
}

type participantInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p participantInput) fields() participants.Fields {
	return participants.Fields{Name: p.Name, Email: p.Email}
}

type submissionRequest struct {
	EventID     string           `json:"event_id"`
	Participant participantInput `json:"participant"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// RegisterForEvent takes the event from the path.
func (h *RegistrationsHandler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	h.register(w, r, pathParam(r, "id"), req.Participant)
}

// Register takes the event from the body's event_id.
func (h *RegistrationsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if strings.TrimSpace(req.EventID) == "" {
		fieldError(w, r, "event_id", "this field is required", h.Env)
		return
	}
	h.register(w, r, req.EventID, req.Participant)
}

func (h *RegistrationsHandler) register(w http.ResponseWriter, r *http.Request, eventID string, participant participantInput) {
	outcome, err := h.Service.Register(r.Context(), eventID, participant.fields())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if location, err := ids.ResourceURL(h.BaseURL, "/api/v1/registrations", outcome.Registration.ULID); err == nil {
		w.Header().Set("Location", location)
	}
	writeJSON(w, http.StatusCreated, h.outcomePayload(outcome))
}

// RSVP answers 200 whether the row was created or promoted.
func (h *RegistrationsHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if strings.TrimSpace(req.EventID) == "" {
		fieldError(w, r, "event_id", "this field is required", h.Env)
		return
	}

	outcome, err := h.Service.RSVP(r.Context(), req.EventID, req.Participant.fields())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, h.outcomePayload(outcome))
}

func (h *RegistrationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, h.detailPayload(detail))
}

// UpdateStatus applies an organizer status transition.
func (h *RegistrationsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	status, err := registrations.ParseStatus(req.Status)
	if err != nil {
		fieldError(w, r, "status", "must be one of pending, confirmed, cancelled, rsvp", h.Env)
		return
	}

	id := pathParam(r, "id")
	detail, err := h.Service.UpdateStatus(r.Context(), id, status)
	auditResult(h.Audit, r, "registration.status_update", "registration", id, err, map[string]string{"status": string(status)})
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, h.detailPayload(detail))
}

func (h *RegistrationsHandler) outcomePayload(o *registrations.Outcome) registrationPayload {
	return toRegistrationPayload(o.Registration, o.Event, o.Participant, h.Events.IsOpen(o.Event))
}

func (h *RegistrationsHandler) detailPayload(d *registrations.Detail) registrationPayload {
	return toRegistrationPayload(d.Registration, d.Event, d.Participant, h.Events.IsOpen(d.Event))
}
