// Package flash carries one-shot user notices across a redirect in a signed cookie.
package flash

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultCookieName is the cookie notices travel in unless WithCookieName overrides it
	DefaultCookieName = "flash"
	// DefaultTTL bounds how long unread notices survive
	DefaultTTL = 5 * time.Minute

	// keep the cookie well under the 4KB browser limit
	maxNotices = 10
)

// Level is the severity of a notice
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Notice is a single message shown to the user once
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type claims struct {
	Notices []Notice `json:"notices"`
	jwt.RegisteredClaims
}

// Store reads and writes notices as an HS256-signed JWT cookie
type Store struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithCookieName renames the cookie; empty keeps DefaultCookieName
func WithCookieName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithTTL sets how long notices stay readable; non-positive keeps DefaultTTL
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSecure marks the cookie Secure, for deployments behind TLS
func WithSecure(secure bool) Option {
	return func(s *Store) {
		s.secure = secure
	}
}

// WithClock replaces time.Now for signing and expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore signs cookies with secret, which must not be empty
func NewStore(secret string, opts ...Option) (*Store, error) {
	if secret == "" {
		return nil, errors.New("flash secret cannot be empty")
	}
	s := &Store{
		secret:     []byte(secret),
		cookieName: DefaultCookieName,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Add appends notices to those already pending in the request and writes the cookie.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, notices ...Notice) error {
	if len(notices) == 0 {
		return nil
	}
	pending := append(s.read(r), notices...)
	if len(pending) > maxNotices {
		pending = pending[len(pending)-maxNotices:]
	}

	now := s.now().UTC()
	expire := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Notices: pending,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expire),
		},
	})
	value, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign flash cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expire,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the pending notices and clears the cookie.
// A missing, expired or tampered cookie yields no notices.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Notice {
	notices := s.read(r)
	if _, err := r.Cookie(s.cookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return notices
}

func (s *Store) read(r *http.Request) []Notice {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	var c claims
	_, err = jwt.ParseWithClaims(cookie.Value, &c, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		slog.Warn("Discarding invalid flash cookie", "err", err)
		return nil
	}
	return c.Notices
}
