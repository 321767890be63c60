package postman

import "github.com/google/uuid"

// IDSource hands out the identifiers embedded in a collection.
type IDSource interface {
	NewID() string
}

// RandomIDs issues random v4 UUIDs.
type RandomIDs struct{}

func (RandomIDs) NewID() string { return uuid.NewString() }

// FixedIDs always returns the nil UUID, making output byte-for-byte
// reproducible.
type FixedIDs struct{}

func (FixedIDs) NewID() string { return uuid.Nil.String() }
