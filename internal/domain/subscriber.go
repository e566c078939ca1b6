package domain

// Subscriber is one live real-time channel to a client.
//
// Send must never block: implementations either enqueue the frame into bounded
// storage or fail with an error wrapping ErrSubscriberUnreachable.
// Close releases the underlying transport and is safe to call more than once;
// a non-empty reason is passed to the client where the transport supports it.
type Subscriber interface {
	Send(frame []byte) error
	Close(reason string)
}
