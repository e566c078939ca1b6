package domain

import (
	"encoding/json"
	"fmt"
)

// Event names carried in the envelope, one per logical channel.
const (
	EventMessage   = "message"
	EventPiezoData = "piezo_data"
)

// WelcomeText is sent to every subscriber right after it connects.
const WelcomeText = "Connected to server"

// Message is an opaque JSON document relayed verbatim from publisher to subscribers.
type Message = json.RawMessage

// Envelope is the frame pushed to subscribers.
type Envelope struct {
	Event string  `json:"event"`
	Data  Message `json:"data"`
}

// EncodeEnvelope builds the wire frame for event carrying data.
// data is copied byte for byte; it is neither compacted nor HTML-escaped.
func EncodeEnvelope(event string, data Message) ([]byte, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("encode %s envelope: data is not valid JSON", event)
	}
	name, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", event, err)
	}

	frame := make([]byte, 0, len(`{"event":,"data":}`)+len(name)+len(data))
	frame = append(frame, `{"event":`...)
	frame = append(frame, name...)
	frame = append(frame, `,"data":`...)
	frame = append(frame, data...)
	frame = append(frame, '}')
	return frame, nil
}

// WelcomeFrame returns the greeting sent on the message channel.
func WelcomeFrame() []byte {
	frame, err := EncodeEnvelope(EventMessage, Message(`{"msg":"`+WelcomeText+`"}`))
	if err != nil {
		panic(err)
	}
	return frame
}
