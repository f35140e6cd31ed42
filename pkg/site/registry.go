// Package site keeps the set of sites served by one deployment and answers
// which one is current. Confirmation links are built against the current
// site's domain.
package site

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrSiteNotFound = errors.New("site not found")

// Site is a domain served by this deployment
type Site struct {
	ID     int    `json:"id"`
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

type contextKey struct{}

// WithSiteID returns a context whose current site is id instead of the registry default
func WithSiteID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Registry holds sites by id
type Registry struct {
	mu        sync.RWMutex
	sites     map[int]Site
	currentID int
}

// NewRegistry creates a registry whose current site is currentID
func NewRegistry(currentID int) *Registry {
	return &Registry{
		sites:     make(map[int]Site),
		currentID: currentID,
	}
}

// Register adds or replaces a site
func (r *Registry) Register(s Site) error {
	s.Domain = strings.TrimSpace(s.Domain)
	if s.Domain == "" {
		return fmt.Errorf("site %d: domain cannot be empty", s.ID)
	}
	if strings.Contains(s.Domain, "/") {
		return fmt.Errorf("site %d: domain %q must be a host name", s.ID, s.Domain)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sites[s.ID] = s
	return nil
}

// Get returns the site with id
func (r *Registry) Get(id int) (Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sites[id]
	if !ok {
		return Site{}, fmt.Errorf("%w: id %d", ErrSiteNotFound, id)
	}
	return s, nil
}

// Current returns the site selected by the context, falling back to the registry default
func (r *Registry) Current(ctx context.Context) (Site, error) {
	id := r.currentID
	if v, ok := ctx.Value(contextKey{}).(int); ok {
		id = v
	}
	return r.Get(id)
}

// CurrentDomain returns the current site's domain
func (r *Registry) CurrentDomain(ctx context.Context) (string, error) {
	s, err := r.Current(ctx)
	if err != nil {
		return "", err
	}
	return s.Domain, nil
}

// CurrentSiteName returns the current site's display name
func (r *Registry) CurrentSiteName(ctx context.Context) (string, error) {
	s, err := r.Current(ctx)
	if err != nil {
		return "", err
	}
	return s.Name, nil
}
