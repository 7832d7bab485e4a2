package events

import "time"

// EventType represents the type of event pushed to dashboard clients.
type EventType string

const (
	// EventTypeRequestLog represents a completed HTTP request.
	EventTypeRequestLog EventType = "request_log"
	// EventTypeProcessing represents a finished anonymize/deanonymize call.
	EventTypeProcessing EventType = "processing"
	// EventTypeConnection represents client connect/disconnect.
	EventTypeConnection EventType = "connection"
)

// Event is the envelope sent to clients.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// RequestLogEvent summarizes one HTTP request.
type RequestLogEvent struct {
	RequestID    string        `json:"request_id"`
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	StatusCode   int           `json:"status_code"`
	ClientIP     string        `json:"client_ip"`
	Duration     time.Duration `json:"duration"`
	RequestSize  int64         `json:"request_size"`
	ResponseSize int64         `json:"response_size"`
}

// ProcessingEvent summarizes one anonymization or restoration call. Only
// counts and tags travel over the socket, never original values.
type ProcessingEvent struct {
	RequestID     string  `json:"request_id"`
	Operation     string  `json:"operation"` // "anonymize" or "deanonymize"
	Tags          int     `json:"tags"`
	UnmatchedTags int     `json:"unmatched_tags,omitempty"`
	Blocks        int     `json:"blocks,omitempty"`
	ProcessingMS  float64 `json:"processing_ms"`
}

// ConnectionEvent represents a client joining or leaving the hub.
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
}
