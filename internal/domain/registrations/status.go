package registrations

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusRSVP      Status = "rsvp"
)

func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRSVP:
		return s, nil
	default:
		return "", fmt.Errorf("unknown registration status %q", value)
	}
}

// CanTransition reports whether an organizer may move a registration from
// one status to another. Setting the current status again is always allowed.
// rsvp is reachable only through the RSVP flow.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	default:
		return false
	}
}
