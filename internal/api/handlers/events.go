package handlers

import (
	"net/http"

	"github.com/ratiba-events/server/internal/audit"
	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/ids"
	"github.com/ratiba-events/server/internal/domain/registrations"
)

type EventsHandler struct {
	Service       *events.Service
	Registrations *registrations.Service
	Audit         *audit.Logger
	Env           string
	BaseURL       string
}

func NewEventsHandler(service *events.Service, regs *registrations.Service, env string, baseURL string) *EventsHandler {
	return &EventsHandler{Service: service, Registrations: regs, Env: env, BaseURL: baseURL}
}

type eventListResponse struct {
	Items  []eventPayload `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type attendeeListResponse struct {
	Event eventPayload      `json:"event"`
	Items []attendeePayload `json:"items"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, pagination, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	list, err := h.Service.List(r.Context(), filters, pagination)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	items := make([]eventPayload, 0, len(list))
	for _, e := range list {
		items = append(items, toEventPayload(e, h.Service.IsOpen(e)))
	}
	writeJSON(w, http.StatusOK, eventListResponse{Items: items, Limit: pagination.Limit, Offset: pagination.Offset})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input events.EventInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), input)
	if err != nil {
		auditResult(h.Audit, r, "event.create", "event", "", err, nil)
		writeError(w, r, err, h.Env)
		return
	}
	auditResult(h.Audit, r, "event.create", "event", event.ULID, nil, map[string]string{"title": event.Title})

	if location, err := ids.ResourceURL(h.BaseURL, "/api/v1/events", event.ULID); err == nil {
		w.Header().Set("Location", location)
	}
	writeJSON(w, http.StatusCreated, toEventPayload(*event, h.Service.IsOpen(*event)))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.GetByULID(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventPayload(*event, h.Service.IsOpen(*event)))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	err := h.Service.Delete(r.Context(), id)
	auditResult(h.Audit, r, "event.delete", "event", id, err, nil)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Participants lists everyone registered for the event, oldest first.
func (h *EventsHandler) Participants(w http.ResponseWriter, r *http.Request) {
	event, entries, err := h.Registrations.ListParticipants(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	items := make([]attendeePayload, 0, len(entries))
	for _, entry := range entries {
		items = append(items, attendeePayload{
			RegistrationID: entry.Registration.ULID,
			Status:         string(entry.Registration.Status),
			Timestamp:      entry.Registration.Timestamp,
			Participant:    toParticipantPayload(entry.Participant),
		})
	}
	writeJSON(w, http.StatusOK, attendeeListResponse{
		Event: toEventPayload(*event, h.Service.IsOpen(*event)),
		Items: items,
	})
}
