package handlers

import (
	"time"

	"github.com/ratiba-events/server/internal/domain/events"
	"github.com/ratiba-events/server/internal/domain/participants"
	"github.com/ratiba-events/server/internal/domain/registrations"
)

type eventPayload struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Venue       string    `json:"venue"`
	Charge      string    `json:"charge"`
	IsOpen      bool      `json:"is_open"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type participantPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type registrationPayload struct {
	ID          string             `json:"id"`
	Event       eventPayload       `json:"event"`
	Participant participantPayload `json:"participant"`
	Timestamp   time.Time          `json:"timestamp"`
	Status      string             `json:"status"`
}

// attendeePayload is one row of an event's participant list.
type attendeePayload struct {
	RegistrationID string             `json:"registration_id"`
	Status         string             `json:"status"`
	Timestamp      time.Time          `json:"timestamp"`
	Participant    participantPayload `json:"participant"`
}

func toEventPayload(e events.Event, open bool) eventPayload {
	return eventPayload{
		ID:          e.ULID,
		Title:       e.Title,
		Description: e.Description,
		ImageURL:    e.ImageURL,
		Date:        events.FormatDate(e.Date),
		Time:        e.Time.String(),
		Venue:       e.Venue,
		Charge:      string(e.Charge),
		IsOpen:      open,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toParticipantPayload(p participants.Participant) participantPayload {
	return participantPayload{
		ID:        p.ULID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
}

func toRegistrationPayload(reg registrations.Registration, e events.Event, p participants.Participant, open bool) registrationPayload {
	return registrationPayload{
		ID:          reg.ULID,
		Event:       toEventPayload(e, open),
		Participant: toParticipantPayload(p),
		Timestamp:   reg.Timestamp,
		Status:      string(reg.Status),
	}
}
