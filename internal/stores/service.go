package stores

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-mapsync/internal/logging"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

var (
	ErrNameRequired = errors.New("stores: name is required")
	ErrSlugInvalid  = errors.New("stores: slug contains invalid characters")
	ErrSlugExists   = errors.New("stores: slug already exists")
)

// Service exposes store registry use-cases. Store records scope every map
// document; the engine's mutator paths flip their draft flag through the
// document repositories, not through this service.
type Service interface {
	Create(ctx context.Context, req CreateStoreRequest) (*mapdoc.Store, error)
	Get(ctx context.Context, id uuid.UUID) (*mapdoc.Store, error)
	GetBySlug(ctx context.Context, slug string) (*mapdoc.Store, error)
	List(ctx context.Context) ([]*mapdoc.Store, error)
}

// CreateStoreRequest captures the information required to register a store.
// When Slug is empty it is derived from Name.
type CreateStoreRequest struct {
	Name string
	Slug string
}

// Repository abstracts store persistence.
type Repository interface {
	Create(ctx context.Context, record *mapdoc.Store) (*mapdoc.Store, error)
	GetByID(ctx context.Context, id uuid.UUID) (*mapdoc.Store, error)
	GetBySlug(ctx context.Context, slug string) (*mapdoc.Store, error)
	List(ctx context.Context) ([]*mapdoc.Store, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// IDGenerator produces store identifiers.
type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger injects the registry logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo   Repository
	now    func() time.Time
	id     IDGenerator
	logger interfaces.Logger
}

// NewService constructs a store registry service.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a store with a normalized, unique slug.
func (s *service) Create(ctx context.Context, req CreateStoreRequest) (*mapdoc.Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	candidate := strings.TrimSpace(req.Slug)
	if candidate == "" {
		candidate = name
	}
	normalized, err := slug.Normalize(candidate)
	if err != nil || !slug.IsValid(normalized) {
		return nil, ErrSlugInvalid
	}

	if existing, err := s.repo.GetBySlug(ctx, normalized); err == nil && existing != nil {
		return nil, ErrSlugExists
	} else if err != nil {
		var notFound *mapdoc.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	now := s.now()
	record := &mapdoc.Store{
		ID:   s.id(),
		Name: name,
		Slug: normalized,
		// a store with no publish yet is a draft
		DraftChanges: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("stores.created", "store_id", created.ID.String(), "slug", created.Slug)
	return created, nil
}

// Get fetches a store by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*mapdoc.Store, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug fetches a store by its slug.
func (s *service) GetBySlug(ctx context.Context, raw string) (*mapdoc.Store, error) {
	normalized, err := slug.Normalize(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrSlugInvalid
	}
	return s.repo.GetBySlug(ctx, normalized)
}

// List returns every registered store.
func (s *service) List(ctx context.Context) ([]*mapdoc.Store, error) {
	return s.repo.List(ctx)
}
