package client

import "fmt"

// HealthResponse from GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// SessionInfo from GET /api/v1/sessions and /api/v1/sessions/:id.
type SessionInfo struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
}

// SessionMessage is a single message in a session's history.
type SessionMessage struct {
	Seq       int64  `json:"seq,omitempty"`
	Role      string `json:"role"` // "user" | "assistant" | "system"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// PageQuery selects a window of session messages by sequence number. With
// neither bound set the newest Limit messages are returned.
type PageQuery struct {
	Before int64
	After  int64
	Limit  int
}

// MessagePage from GET /api/v1/sessions/:id/messages.
type MessagePage struct {
	Messages []SessionMessage `json:"messages"`
	// Offset is the sequence number preceding the first message.
	Offset  int64 `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// ErrorResponse for API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("API %d: %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("API %d: %s", e.Status, e.Message)
}
