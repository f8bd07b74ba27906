package tui

import "errors"

var (
	// ErrMissingGenerator indicates that no GenerateFunc was supplied.
	ErrMissingGenerator = errors.New("tui: generate function is required")

	// ErrCancelled indicates the user quit before generation finished.
	ErrCancelled = errors.New("tui: generation cancelled")
)
