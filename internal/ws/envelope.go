package ws

import "encoding/json"

// ProtocolError marks a frame the server cannot interpret. It is fatal to
// the submitting connection, which is closed with an invalid-payload status.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// Envelope is the minimal tagged wrapper around an inbound frame. Raw holds
// the complete frame; payload fields are decoded only after the type is
// known.
type Envelope struct {
	Type string
	Raw  []byte
}

// ParseEnvelope classifies a frame without committing to a payload shape.
// A malformed frame or an absent type yields a ProtocolError.
func ParseEnvelope(data []byte) (Envelope, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Envelope{}, &ProtocolError{Reason: "invalid message format"}
	}
	if head.Type == "" {
		return Envelope{}, &ProtocolError{Reason: "missing message type"}
	}
	return Envelope{Type: head.Type, Raw: data}, nil
}
