package confirmation

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tendant/simple-confirm/pkg/notification"
)

// DefaultPathTemplate is the confirmation route; %s is replaced with the key
const DefaultPathTemplate = "/confirm/%s/"

// Notifier delivers a confirmation key to the pending address
type Notifier interface {
	Deliver(ctx context.Context, recipient string, account Account, key string) error
}

// DomainResolver returns the host name confirmation links point at
type DomainResolver interface {
	CurrentDomain(ctx context.Context) (string, error)
}

// SiteNamer is implemented by resolvers that also know a display name for the site
type SiteNamer interface {
	CurrentSiteName(ctx context.Context) (string, error)
}

// StaticDomain resolves to a fixed host name
type StaticDomain string

// CurrentDomain returns d
func (d StaticDomain) CurrentDomain(ctx context.Context) (string, error) {
	if d == "" {
		return "", fmt.Errorf("static domain is empty")
	}
	return string(d), nil
}

// NoticeSender is the part of notification.NotificationManager the mail notifier uses
type NoticeSender interface {
	Send(ctx context.Context, noticeType notification.NoticeType, data notification.NotificationData) error
}

// MailNotifier sends the confirmation link through the notification manager
type MailNotifier struct {
	sender       NoticeSender
	resolver     DomainResolver
	scheme       string
	pathTemplate string
}

// MailNotifierOption configures a MailNotifier
type MailNotifierOption func(*MailNotifier)

// WithScheme sets the URL scheme of confirmation links (default "http")
func WithScheme(scheme string) MailNotifierOption {
	return func(n *MailNotifier) {
		if scheme != "" {
			n.scheme = scheme
		}
	}
}

// WithPathTemplate overrides DefaultPathTemplate, e.g. when the handler is mounted under a prefix
func WithPathTemplate(tmpl string) MailNotifierOption {
	return func(n *MailNotifier) {
		if strings.Contains(tmpl, "%s") {
			n.pathTemplate = tmpl
		}
	}
}

// NewMailNotifier creates a notifier that resolves the link domain with resolver
func NewMailNotifier(sender NoticeSender, resolver DomainResolver, opts ...MailNotifierOption) *MailNotifier {
	n := &MailNotifier{
		sender:       sender,
		resolver:     resolver,
		scheme:       "http",
		pathTemplate: DefaultPathTemplate,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ConfirmationURL builds the absolute link for key
func (n *MailNotifier) ConfirmationURL(ctx context.Context, key string) (string, error) {
	return n.AbsoluteURL(ctx, fmt.Sprintf(n.pathTemplate, url.PathEscape(key)))
}

// AbsoluteURL prefixes a site-relative path with the scheme and current domain
func (n *MailNotifier) AbsoluteURL(ctx context.Context, path string) (string, error) {
	domain, err := n.resolver.CurrentDomain(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve domain: %w", err)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", n.scheme, domain, path), nil
}

// Deliver sends the email_confirmation notice to recipient
func (n *MailNotifier) Deliver(ctx context.Context, recipient string, account Account, key string) error {
	link, err := n.ConfirmationURL(ctx, key)
	if err != nil {
		return err
	}
	siteName, err := n.siteName(ctx)
	if err != nil {
		return err
	}

	data := notification.NotificationData{
		To: recipient,
		Data: map[string]string{
			"ActivateURL": link,
			"Email":       recipient,
			"SiteName":    siteName,
			"UserID":      account.ID.String(),
			"UserEmail":   account.Email,
		},
	}
	if err := n.sender.Send(ctx, notification.EmailConfirmationNotice, data); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

func (n *MailNotifier) siteName(ctx context.Context) (string, error) {
	if namer, ok := n.resolver.(SiteNamer); ok {
		name, err := namer.CurrentSiteName(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve site name: %w", err)
		}
		if name != "" {
			return name, nil
		}
	}
	domain, err := n.resolver.CurrentDomain(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve domain: %w", err)
	}
	return domain, nil
}
