package models

// HistoryEntry is a single turn of the conversation as it crosses the wire.
// Local-only message fields (error flags) are never serialized; the request
// builder projects conversation messages down to this shape.
type HistoryEntry struct {
	Role       string   `json:"role"`
	Content    string   `json:"content"`
	Components []string `json:"components,omitempty"`
}

// AssistRequest is the payload sent from the plugin core to the assist
// endpoint. ComponentData carries the current outer HTML of each referenced
// component, keyed by component id; ids that could not be located in the
// tree are present in Components but absent from ComponentData.
type AssistRequest struct {
	History       []HistoryEntry    `json:"history"`
	Message       string            `json:"message"`
	Components    []string          `json:"components"`
	ComponentData map[string]string `json:"componentData"`
}

// AssistResponse is the reply from the assist endpoint. Modifications maps
// component id to replacement HTML and may be absent or empty.
type AssistResponse struct {
	Reply         string            `json:"reply"`
	Modifications map[string]string `json:"modifications,omitempty"`
}

// StreamEvent is an event pushed over the relay's WebSocket stream.
type StreamEvent struct {
	EventType string                 `json:"event_type"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Stream event types
const (
	StreamEventAccepted = "accepted"
	StreamEventReply    = "reply"
	StreamEventError    = "error"
	StreamEventEnd      = "end"
)
