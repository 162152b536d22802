package domain

import "errors"

// Sentinel errors for the records domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrTaskNotFound indicates the requested maintenance task does not exist.
	ErrTaskNotFound = errors.New("maintenance task not found")

	// ErrDuplicateID indicates a record with the same ID is already in the store.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrInvalidRecord indicates a record violates domain constraints.
	ErrInvalidRecord = errors.New("invalid record")
)
