package confirmation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no confirmation record matches a key
	ErrNotFound = errors.New("confirmation not found")

	// ErrExpired is returned when a confirmation key is past its TTL
	ErrExpired = errors.New("confirmation key has expired")

	// ErrAlreadyVerified is returned when a confirmation can no longer be applied,
	// either because it was used before or because its email was claimed first
	ErrAlreadyVerified = errors.New("confirmation already verified")

	// ErrEmailTaken is returned when another account already holds the pending email.
	// It matches ErrAlreadyVerified with errors.Is.
	ErrEmailTaken = fmt.Errorf("%w: email belongs to another account", ErrAlreadyVerified)

	// ErrInvalidEmail is returned when a pending email is not a valid address
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrAccountNotFound is returned when the owning account does not exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateKey is returned by stores when a key collides with an existing record
	ErrDuplicateKey = errors.New("confirmation key already exists")
)
