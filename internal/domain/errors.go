package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSubscriberUnreachable marks a send that failed; the registry evicts the subscriber.
	ErrSubscriberUnreachable = errors.New("subscriber unreachable")
	ErrSubscriberClosed      = fmt.Errorf("%w: connection closed", ErrSubscriberUnreachable)
	ErrSendQueueFull         = fmt.Errorf("%w: send queue full", ErrSubscriberUnreachable)
)
