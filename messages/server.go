package messages

import "encoding/xml"

// Error codes
const (
	ErrCodeInvalidMessage  = "INVALID_MESSAGE"
	ErrCodeSessionFailed   = "SESSION_FAILED"
	ErrCodeClassifierError = "CLASSIFIER_ERROR"
	ErrCodeConfigError     = "CONFIG_ERROR"
)

// Server message types
const (
	TypeText   = "text"
	TypeStatus = "status"
	TypeError  = "error"
)

// Status values
const (
	StatusConnected    = "connected"
	StatusTurnComplete = "turn_complete"
	StatusEnded        = "ended"
	StatusPong         = "pong"
)

// ServerMessage represents a message sent to a chat client
type ServerMessage struct {
	Type      string      `json:"type"` // "text", "status", "error"
	SessionID string      `json:"sessionId,omitempty"`
	Payload   interface{} `json:"payload"`
}

// TextResponsePayload contains one system utterance. Act and State are
// only filled in debug mode.
type TextResponsePayload struct {
	Text  string `json:"text"`
	Act   string `json:"act,omitempty"`
	State string `json:"state,omitempty"`
}

// StatusPayload contains status updates
type StatusPayload struct {
	Status  string `json:"status"` // "connected", "turn_complete", "ended", "pong"
	Message string `json:"message,omitempty"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TwiMLResponse is the reply to a Twilio messaging webhook
type TwiMLResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// NewTwiMLResponse creates a TwiML reply with one SMS per text
func NewTwiMLResponse(texts ...string) *TwiMLResponse {
	return &TwiMLResponse{Messages: texts}
}

// NewTextMessage creates a text response message
func NewTextMessage(sessionID, text string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeText,
		SessionID: sessionID,
		Payload: TextResponsePayload{
			Text: text,
		},
	}
}

// NewDebugTextMessage creates a text response message annotated with the
// classified act and the resulting state
func NewDebugTextMessage(sessionID, text, act, state string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeText,
		SessionID: sessionID,
		Payload: TextResponsePayload{
			Text:  text,
			Act:   act,
			State: state,
		},
	}
}

// NewStatusMessage creates a status message
func NewStatusMessage(sessionID, status, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeStatus,
		SessionID: sessionID,
		Payload: StatusPayload{
			Status:  status,
			Message: message,
		},
	}
}

// NewErrorMessage creates an error message
func NewErrorMessage(sessionID, code, message string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeError,
		SessionID: sessionID,
		Payload: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
