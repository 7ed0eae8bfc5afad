package server

import "errors"

// Relay errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrMaxClientsReached    = errors.New("maximum clients reached")
	ErrEmptyReplay          = errors.New("nothing to relay: replay has no events")
)
