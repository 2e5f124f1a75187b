package config

import "errors"

var (
	// ErrEnvironmentNotFound is returned when the host table has no entry for the resolved environment.
	ErrEnvironmentNotFound = errors.New("environment not found in redis config")
	// ErrEmptyHost is returned when the selected entry does not name a host.
	ErrEmptyHost = errors.New("redis host must not be empty")
	// ErrInvalidHost is returned when a host entry cannot be interpreted.
	ErrInvalidHost = errors.New("invalid redis host entry")
)
