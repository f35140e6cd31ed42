// Package errors gives API errors a stable code and maps each code to an
// HTTP status.
//
//	err := errors.Wrap(dbErr, errors.ErrCodeInternal, "An error occurred while requesting confirmation")
//	status := err.HTTPStatusCode() // 500
//
// Clients should branch on Code; Message is for people.
package errors
