package protocol

import "errors"

// Core protocol errors
var (
	// Envelope errors

	ErrUnknownMessageType = errors.New("unknown message type")
	ErrEmptyPayload       = errors.New("empty payload")

	// Source errors

	ErrSourceClosed = errors.New("message source is closed")
	ErrSendTimeout  = errors.New("send timed out")

	// Engine-facing errors

	ErrQueueFull    = errors.New("inbound queue is full")
	ErrSessionEnded = errors.New("session has ended")
)
