package core

import "github.com/google/uuid"

// Identifier tags engine objects (resources, sessions) in logs.
type Identifier = uuid.UUID

func IdentifierAquireNewID() Identifier {
	return uuid.New()
}

// IdentifierShort is the first block of id, enough to tell objects apart in a log line.
func IdentifierShort(id Identifier) string {
	return id.String()[:8]
}
