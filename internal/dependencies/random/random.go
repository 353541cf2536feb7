package random

import (
	"github.com/google/uuid"
)

// Random provides identifier generation that can be mocked for testing
type Random interface {
	// ID returns a collision resistant identifier with the given prefix
	ID(prefix string) string
}

// UUIDRandom implements Random with version 4 UUIDs from crypto/rand
type UUIDRandom struct{}

// New creates a new UUIDRandom
func New() *UUIDRandom {
	return &UUIDRandom{}
}

// ID returns prefix followed by a random UUID
func (r *UUIDRandom) ID(prefix string) string {
	return prefix + uuid.NewString()
}
