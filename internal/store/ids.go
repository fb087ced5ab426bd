package store

import (
	"fmt"

	"github.com/google/uuid"
)

// RunIDGenerator mints IDs for stored runs. The store takes this as an
// interface so tests can pin IDs.
type RunIDGenerator interface {
	NewRunID() (string, error)
}

// UUIDGenerator mints UUIDv7 run IDs. Because v7 embeds a millisecond
// timestamp prefix, sorting IDs lexicographically sorts runs by creation
// time, which the list query relies on.
type UUIDGenerator struct{}

func (UUIDGenerator) NewRunID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}
