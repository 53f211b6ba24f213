package notification

import "errors"

var (
	ErrQueueFull       = errors.New("notification queue is full")
	ErrNoRecipientAddr = errors.New("recipient has no address for this channel")
)
