package service

import "errors"

var (
	// ErrNotFound is returned when no giveaway matches the requested id.
	ErrNotFound = errors.New("giveaway not found")

	// ErrAlreadyResolved is returned when an operation requires an
	// unresolved giveaway.
	ErrAlreadyResolved = errors.New("giveaway is already resolved")

	// ErrNotAuthorized is returned when the requester lacks admin rights in
	// the chat the giveaway is announced in.
	ErrNotAuthorized = errors.New("requester is not an admin of the chat")

	// ErrResolutionConflict signals that another resolver already claimed or
	// resolved the giveaway. It is the expected outcome of a lost race and
	// is swallowed by the scanner and the participation handler.
	ErrResolutionConflict = errors.New("giveaway already claimed by another resolver")
)
