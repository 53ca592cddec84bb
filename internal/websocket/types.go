package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/raaihank/docmask/internal/privacy"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeScan is emitted after a document scan completes. It
	// carries category counts only, never document content.
	EventTypeScan EventType = "scan"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// ScanEvent summarizes one completed scan for the dashboard feed.
type ScanEvent struct {
	RequestID   string            `json:"request_id"`
	Filename    string            `json:"filename,omitempty"`
	Format      string            `json:"format"`
	Action      string            `json:"action"`
	Findings    []privacy.Finding `json:"findings"`
	TotalMasked int               `json:"total_masked"`
	Units       int               `json:"units"`
	DurationMS  float64           `json:"duration_ms"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalScans       int64  `json:"total_scans"`
	TotalDetections  int64  `json:"total_detections"`
	ActiveRules      int    `json:"active_rules"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID          string
	Conn        *websocket.Conn
	Send        chan Event
	ConnectedAt time.Time
	IP          string
}
