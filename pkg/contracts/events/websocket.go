// Package events contains the WebSocket event contracts of bondpulse.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle
	MessageTypeDatasetLoaded   MessageType = "dataset:loaded"
	MessageTypeDatasetReloaded MessageType = "dataset:reloaded"
	MessageTypeDatasetFailed   MessageType = "dataset:failed"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetEvent describes a ticker table that was (re)built or failed to build
type DatasetEvent struct {
	Ticker      string `json:"ticker"`
	Rows        int    `json:"rows,omitempty"`
	TradingDays int    `json:"trading_days,omitempty"`
	SkippedRows int    `json:"skipped_rows,omitempty"`
	FirstDay    string `json:"first_day,omitempty"`
	LastDay     string `json:"last_day,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(msgType MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
		},
		Data: data,
	}
}
