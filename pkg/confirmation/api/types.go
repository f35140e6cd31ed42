package api

import "time"

// RequestConfirmationRequest asks for a confirmation email to be sent to Email
type RequestConfirmationRequest struct {
	Email string `json:"email"`
}

// RecordResponse describes a confirmation without its key
type RecordResponse struct {
	ID        string    `json:"id" copier:"-"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at" copier:"-"`
	Verified  bool      `json:"verified"`
}

// PendingEmailResponse is the address the user should be told about
type PendingEmailResponse struct {
	Email          string `json:"email"`
	IsAccountEmail bool   `json:"is_account_email"`
}

// NoticeResponse is a flash notice popped for display
type NoticeResponse struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
