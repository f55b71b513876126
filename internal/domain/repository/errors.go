package repository

import "errors"

var (
	// ErrChannelNotFound is returned when a channel cannot be found.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrDuplicateChannel is returned when attempting to create a channel
	// whose identifier already exists.
	ErrDuplicateChannel = errors.New("channel already exists")
)
