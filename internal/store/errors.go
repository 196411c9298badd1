package store

import "errors"

var (
	// ErrCredentialExists is returned when a user already has a stored credential
	ErrCredentialExists = errors.New("google credential already exists")

	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")
)
