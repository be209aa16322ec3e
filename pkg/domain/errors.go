package domain

import "errors"

var (
	// ErrContextNotFound indicates no persisted snapshot exists for a session.
	ErrContextNotFound = errors.New("context not found")

	// ErrUnknownCommand indicates the command name is not in the manifest.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnknownSource indicates a source name is not declared in the manifest.
	ErrUnknownSource = errors.New("unknown source")
)
