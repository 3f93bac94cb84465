package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier. Override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New is a thin wrapper around NewFunc.
func New() string { return NewFunc() }
