package core

import "github.com/google/uuid"

// GUID identifies hosts, nodes and render targets.
type GUID = uuid.UUID

// NewGUID returns a fresh random identifier.
func NewGUID() GUID {
	return uuid.New()
}

// ShortID returns the first eight hex characters of the identifier, for log lines.
func ShortID(id GUID) string {
	return id.String()[:8]
}
