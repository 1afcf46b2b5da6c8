package auth

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleViewer    Role = "viewer"
)

// NormalizeRole maps unknown roles to RoleViewer, which holds no write access.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleOrganizer):
		return RoleOrganizer
	default:
		return RoleViewer
	}
}

func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current := NormalizeRole(role)
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}

// CanManageEvents reports whether role may use organizer endpoints.
func CanManageEvents(role string) bool {
	return HasRole(role, RoleAdmin, RoleOrganizer)
}
