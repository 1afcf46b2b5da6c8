package events

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseFilters reads the list query string: when, limit and offset.
// Now and Location are filled in by the Service.
func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{Window: WindowAll}
	pagination := Pagination{Limit: defaultLimit}

	if raw := strings.ToLower(strings.TrimSpace(values.Get("when"))); raw != "" {
		switch Window(raw) {
		case WindowAll, WindowPast, WindowFuture:
			filters.Window = Window(raw)
		default:
			return filters, pagination, FilterError{Field: "when", Message: "must be one of all, past, future"}
		}
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filters, pagination, FilterError{Field: "limit", Message: "must be a positive integer"}
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		pagination.Limit = limit
	}

	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filters, pagination, FilterError{Field: "offset", Message: "must be a non-negative integer"}
		}
		pagination.Offset = offset
	}

	return filters, pagination, nil
}
