package repository

import "errors"

var (
	// ErrUserExists is returned by Create when the email is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("item not found")
)
