package handlers

import "time"

// ErrorResponse is the standard error body for non-depth endpoints.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Code      string    `json:"code,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status     string    `json:"status"`
	Collection string    `json:"collection"`
	Timestamp  time.Time `json:"timestamp"`
	UptimeSecs float64   `json:"uptime_secs"`
}
