package domain

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// Page size bounds applied to list queries.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageFromQuery reads limit and skip from a raw list query.
// Missing or malformed values fall back to defaults; limit is capped at MaxLimit.
func PageFromQuery(q url.Values) (limit, skip int) {
	limit = DefaultLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = min(v, MaxLimit)
	}

	if v, err := strconv.Atoi(q.Get("skip")); err == nil && v > 0 {
		skip = v
	}

	return limit, skip
}

// CanonicalID returns id in lowercase hyphenated UUID form. Values that are
// not UUIDs come back unchanged.
func CanonicalID(id string) string {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return id
	}

	return parsed.String()
}

// IsID reports whether id is a UUID in any spelling CanonicalID accepts.
func IsID(id string) bool {
	return uuid.Validate(id) == nil
}
