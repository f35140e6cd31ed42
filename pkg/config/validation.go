package config

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidationError is one rejected setting
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors lists every rejected setting of one Validate call
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "configuration validation failed:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// checks accumulates validation failures so Validate can report them together
type checks struct {
	errs ValidationErrors
}

func (c *checks) fail(field, format string, args ...any) {
	c.errs = append(c.errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *checks) nonEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.fail(field, "is required")
	}
}

func (c *checks) positive(field string, value int) {
	if value <= 0 {
		c.fail(field, "must be positive, got %d", value)
	}
}

func (c *checks) port(field string, value uint16) {
	if value == 0 {
		c.fail(field, "port must be between 1 and 65535")
	}
}

func (c *checks) oneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	c.fail(field, "must be one of %v, got %q", allowed, value)
}

func (c *checks) minLength(field, value string, n int) {
	if len(value) < n {
		c.fail(field, "must be at least %d characters, got %d", n, len(value))
	}
}

// address accepts a bare address, the same form the service accepts for confirmations
func (c *checks) address(field, value string) {
	if value == "" {
		c.fail(field, "is required")
		return
	}
	if _, err := mail.ParseAddress(value); err != nil || strings.ContainsAny(value, "<> ") {
		c.fail(field, "invalid email address %q", value)
	}
}

func (c *checks) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}
