package store

import "errors"

// Sentinel errors the mongo layer maps driver failures onto so the
// service layer never inspects driver types directly.
var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: unique index violation")
	ErrStale     = errors.New("store: document changed since read")
)
