// Package bootstrap assembles the confirmation service from configuration.
// The HTTP server and the sweep job share it so both run against the same
// store and mail transport.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-confirm/pkg/config"
	"github.com/tendant/simple-confirm/pkg/confirmation"
	"github.com/tendant/simple-confirm/pkg/confirmation/api"
	"github.com/tendant/simple-confirm/pkg/flash"
	"github.com/tendant/simple-confirm/pkg/notification"
	"github.com/tendant/simple-confirm/pkg/site"
)

// Services holds everything built from one Config
type Services struct {
	Config        config.Config
	Repository    confirmation.ConfirmationRepository
	Notifications *notification.NotificationManager
	Sites         *site.Registry
	Service       *confirmation.ConfirmationService
	Flash         *flash.Store
	TokenAuth     *jwtauth.JWTAuth

	pool *pgxpool.Pool
}

type options struct {
	repo         confirmation.ConfirmationRepository
	notifierOpts []notification.NotificationManagerOption
	observers    []confirmation.Observer
}

// Option overrides part of the assembly
type Option func(*options)

// WithRepository uses repo instead of opening the configured store
func WithRepository(repo confirmation.ConfirmationRepository) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithNotificationOptions replaces the configured mail transport
func WithNotificationOptions(opts ...notification.NotificationManagerOption) Option {
	return func(o *options) {
		o.notifierOpts = append(o.notifierOpts, opts...)
	}
}

// WithObserver registers an extra EmailConfirmed observer after the logging one
func WithObserver(obs confirmation.Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}

// New builds the services. Callers must Close the result.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Services, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	s := &Services{Config: cfg, Repository: o.repo}
	if s.Repository == nil {
		if err := s.openRepository(ctx); err != nil {
			return nil, err
		}
	}

	notifierOpts := o.notifierOpts
	if len(notifierOpts) == 0 {
		notifierOpts = []notification.NotificationManagerOption{cfg.Email.TransportOption()}
	}
	notifierOpts = append(notifierOpts, notification.WithDefaultTemplates())
	manager, err := notification.NewNotificationManagerWithOptions(notifierOpts...)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create notification manager: %w", err)
	}
	s.Notifications = manager

	resolver, err := s.domainResolver()
	if err != nil {
		s.Close()
		return nil, err
	}

	mailer := confirmation.NewMailNotifier(manager, resolver,
		confirmation.WithScheme(cfg.Confirmation.URLScheme),
		confirmation.WithPathTemplate(cfg.Confirmation.PathTemplate()),
	)

	serviceOpts := []confirmation.ConfirmationServiceOption{
		confirmation.WithTTL(cfg.Confirmation.TTL()),
		confirmation.WithUniqueEmail(cfg.Confirmation.UniqueEmail),
		confirmation.WithNotifier(mailer),
		confirmation.WithObserver(confirmation.ObserverFunc(logConfirmed)),
	}
	for _, obs := range o.observers {
		serviceOpts = append(serviceOpts, confirmation.WithObserver(obs))
	}
	s.Service = confirmation.NewConfirmationService(s.Repository, serviceOpts...)

	s.Flash, err = flash.NewStore(cfg.JWT.FlashSigningSecret(), flash.WithSecure(cfg.JWT.CookieSecure))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create flash store: %w", err)
	}
	s.TokenAuth = jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil)

	return s, nil
}

func (s *Services) openRepository(ctx context.Context) error {
	storage := s.Config.Storage
	repoConfig := confirmation.RepositoryConfig{
		SQLitePath:    storage.SQLitePath,
		DataDir:       storage.DataDir,
		MaxTxAttempts: storage.MaxTxAttempts,
	}

	switch storage.Persistence {
	case "postgres", "postgresql":
		dbConfig := s.Config.Database.ToDbConfig()
		pool, err := dbutils.NewDbPool(ctx, dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			return fmt.Errorf("connect to database: %w", err)
		}
		s.pool = pool
		repoConfig.Pool = pool
	}

	repo, err := confirmation.NewConfirmationRepository(storage.Persistence, repoConfig)
	if err != nil {
		s.Close()
		return fmt.Errorf("open %s store: %w", storage.Persistence, err)
	}
	s.Repository = repo
	slog.Info("Confirmation store ready", "persistence", storage.Persistence)
	return nil
}

func (s *Services) domainResolver() (confirmation.DomainResolver, error) {
	cfg := s.Config
	if cfg.Confirmation.DomainStrategy == config.DomainStrategyStatic {
		return confirmation.StaticDomain(cfg.Confirmation.StaticDomain), nil
	}

	s.Sites = site.NewRegistry(cfg.Site.ID)
	if err := s.Sites.Register(site.Site{ID: cfg.Site.ID, Domain: cfg.Site.Domain, Name: cfg.Site.Name}); err != nil {
		return nil, fmt.Errorf("register site: %w", err)
	}
	return s.Sites, nil
}

// Handler returns the confirmation routes
func (s *Services) Handler() http.Handler {
	cfg := s.Config
	h := api.NewHandler(s.Service, s.Flash,
		api.WithRedirectURL(cfg.Confirmation.RedirectURL),
		api.WithLoginURL(cfg.Confirmation.LoginURL),
	)
	return api.Routes(h, s.TokenAuth)
}

// Close releases the store and the database pool
func (s *Services) Close() {
	if s.Repository != nil {
		if err := s.Repository.Close(); err != nil {
			slog.Warn("Failed closing confirmation store", "error", err)
		}
		s.Repository = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}

func logConfirmed(ctx context.Context, event confirmation.EmailConfirmed) {
	slog.Info("Email address confirmed",
		"user_id", event.UserID,
		"email", event.Email,
		"record_id", event.RecordID,
		"confirmed_at", event.ConfirmedAt,
	)
}
