package idgen

import "github.com/google/uuid"

// NewFunc produces identifiers. Tests may swap it for a deterministic
// sequence.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new opaque, globally unique identifier.
func New() string { return NewFunc() }
