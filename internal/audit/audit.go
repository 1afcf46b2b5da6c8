// Package audit records organizer write operations as structured log
// entries, separate from request logs so they can be shipped and retained
// on their own.
package audit

import (
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ratiba-events/server/internal/api/middleware"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is one audited action.
type Entry struct {
	Action       string
	Actor        string
	Role         string
	ResourceType string
	ResourceID   string
	RemoteIP     string
	RequestID    string
	Status       string
	Details      map[string]string
}

// Logger writes audit entries. A nil *Logger discards them.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "audit").Logger()}
}

func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	event := l.logger.Info()
	if entry.Status == StatusFailure {
		event = l.logger.Warn()
	}
	event = event.
		Bool("audit", true).
		Str("action", entry.Action).
		Str("actor", entry.Actor).
		Str("role", entry.Role).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("remote_ip", entry.RemoteIP).
		Str("status", entry.Status)
	if entry.RequestID != "" {
		event = event.Str("request_id", entry.RequestID)
	}
	if len(entry.Details) > 0 {
		dict := zerolog.Dict()
		for k, v := range entry.Details {
			dict = dict.Str(k, v)
		}
		event = event.Dict("details", dict)
	}
	event.Msg("audit")
}

// LogFromRequest fills the actor from the organizer token claims and the
// request ID from the correlation middleware.
func (l *Logger) LogFromRequest(r *http.Request, action, resourceType, resourceID, status string, details map[string]string) {
	if l == nil {
		return
	}
	entry := Entry{
		Action:       action,
		Actor:        "unknown",
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RemoteIP:     remoteIP(r),
		RequestID:    middleware.GetRequestID(r.Context()),
		Status:       status,
		Details:      details,
	}
	if claims := middleware.Claims(r); claims != nil {
		entry.Actor = claims.Subject
		entry.Role = claims.Role
	}
	l.Log(entry)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
