package comm

import (
	"encoding/json"
	"time"
)

// message types on the terminal.service subject
const (
	TypeGetTerminal   = "get-terminal"
	TypeListTerminals = "list-terminals"
	TypeError         = "error"
)

const (
	SubjectTerminalService = "terminal.service"
	SubjectTerminalAdded   = "terminal.added"
)

type Message struct {
	Type string          `json:"type"` // e.g. "get-terminal", "list-terminals"
	Data json.RawMessage `json:"data,omitempty"`
}

type TerminalRequest struct {
	ID uint32 `json:"id"`
}

// ErrorData mirrors the error body of the REST surface.
type ErrorData struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

type TerminalAdded struct {
	EventID   string          `json:"event_id"`
	Terminal  json.RawMessage `json:"terminal"` // codec encoded terminal
	Timestamp time.Time       `json:"timestamp"`
}

func ResponseType(requestType string) string {
	return requestType + "-response"
}
