package handlers

import (
	"net/http"
	"strings"

	"github.com/ratiba-events/server/internal/audit"
	"github.com/ratiba-events/server/internal/domain/participants"
)

type ParticipantsHandler struct {
	Service *participants.Service
	Audit   *audit.Logger
	Env     string
}

func NewParticipantsHandler(service *participants.Service, env string) *ParticipantsHandler {
	return &ParticipantsHandler{Service: service, Env: env}
}

type participantUpdateRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Update changes a participant's identity fields, keyed by email. Omitted
// fields are left as they are.
func (h *ParticipantsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req participantUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		fieldError(w, r, "email", "this field is required", h.Env)
		return
	}

	updated, err := h.Service.Update(r.Context(), req.Email, participants.UpdateParams{Name: req.Name})
	if err != nil {
		auditResult(h.Audit, r, "participant.update", "participant", "", err, map[string]string{"email": req.Email})
		writeError(w, r, err, h.Env)
		return
	}
	auditResult(h.Audit, r, "participant.update", "participant", updated.ULID, nil, map[string]string{"email": updated.Email})
	writeJSON(w, http.StatusOK, toParticipantPayload(*updated))
}

func (h *ParticipantsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	err := h.Service.Delete(r.Context(), id)
	auditResult(h.Audit, r, "participant.delete", "participant", id, err, nil)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
