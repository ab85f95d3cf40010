package messages

import "encoding/json"

// Client message types
const (
	TypeUtterance = "utterance"
	TypeControl   = "control"
)

// Control actions
const (
	ActionPing    = "ping"
	ActionRestart = "restart"
	ActionEnd     = "end"
)

// ClientMessage represents a message from a chat client
type ClientMessage struct {
	Type    string          `json:"type"` // "utterance", "control"
	Payload json.RawMessage `json:"payload"`
}

// UtterancePayload carries one line typed by the user
type UtterancePayload struct {
	Text string `json:"text"`
}

// ControlPayload contains control commands
type ControlPayload struct {
	Action string `json:"action"` // "ping", "restart", "end"
}
