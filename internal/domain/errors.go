package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrNoDeals      = errors.New("no deals to report")
)

// ErrInvalidRecordType is returned for record types that are empty or not
// made of lowercase letters and underscores.
var ErrInvalidRecordType = errors.New("invalid record type")
