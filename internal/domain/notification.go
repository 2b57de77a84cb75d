package domain

import "time"

// Notification is a short-lived user-facing record describing the outcome of
// a completed operation. At most one notification is visible at a time.
type Notification struct {
	Message   string    `json:"message"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
}
