package mapdoc

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-mapsync/internal/domain"
	"github.com/goliatone/go-mapsync/internal/logging"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
	"github.com/google/uuid"
)

// Service exposes the map-document synchronization use-cases: bulk
// replace-save, single-element auto-save, product linking, and the
// draft/publish lifecycle.
type Service interface {
	SaveDocument(ctx context.Context, req SaveDocumentRequest) (*SaveDocumentResult, error)
	CreateElement(ctx context.Context, req CreateElementRequest) (*Element, error)
	UpdateElement(ctx context.Context, req UpdateElementRequest) (*Element, error)
	DeleteElement(ctx context.Context, req DeleteElementRequest) error
	ResolveElement(ctx context.Context, storeID uuid.UUID, ref string) (int64, error)
	LinkProducts(ctx context.Context, req LinkRequest) (*Element, error)
	UnlinkProducts(ctx context.Context, req LinkRequest) (*Element, error)
	SyncProductLinks(ctx context.Context, req LinkRequest) (*Element, error)
	Publish(ctx context.Context, storeID uuid.UUID) (*PublishResult, error)
	Status(ctx context.Context, storeID uuid.UUID) (*DocumentStatus, error)
	ListElements(ctx context.Context, storeID uuid.UUID) ([]*Element, error)
	ListPublishedElements(ctx context.Context, storeID uuid.UUID) ([]*Element, error)
}

// ElementInput is one element as authored by the editor client. Token is the
// client-generated identity; when empty, the token inside Metadata is used.
type ElementInput struct {
	Token    string          `json:"token,omitempty"`
	Kind     string          `json:"type"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	ZIndex   int             `json:"zIndex,omitempty"`
	Color    *string         `json:"color,omitempty"`
	Metadata ElementMetadata `json:"metadata"`
}

// SaveDocumentRequest replaces the entire element set of a store.
type SaveDocumentRequest struct {
	StoreID  uuid.UUID
	Elements []ElementInput
}

// SaveDocumentResult reports the reinserted rows plus the token → new id
// assignment clients use to re-key their local document.
type SaveDocumentResult struct {
	Elements []*Element
	TokenIDs map[string]int64
}

// CreateElementRequest inserts one element without touching the rest of the
// document (auto-save path).
type CreateElementRequest struct {
	StoreID uuid.UUID
	Element ElementInput
}

// UpdateElementRequest patches one element. Ref may be a persisted row id or
// the client token; nil fields keep their stored values, and Metadata is
// merged rather than replaced.
type UpdateElementRequest struct {
	StoreID  uuid.UUID
	Ref      string
	Kind     *string
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	ZIndex   *int
	Color    *string
	Metadata *ElementMetadata
}

// DeleteElementRequest removes one element and its product links.
type DeleteElementRequest struct {
	StoreID uuid.UUID
	Ref     string
}

// LinkRequest targets one element (by id or token) with a set of product ids.
type LinkRequest struct {
	StoreID    uuid.UUID
	Ref        string
	ProductIDs []int64
}

// PublishResult reports the outcome of a publish snapshot.
type PublishResult struct {
	StoreID     uuid.UUID
	PublishedAt time.Time
	Elements    int
}

// DocumentStatus reconciles the cached store flag against the authoritative
// per-element publish flags.
type DocumentStatus struct {
	StoreID          uuid.UUID
	State            domain.Status
	HasDraftChanges  bool
	PublishedAt      *time.Time
	ElementCount     int
	UnpublishedCount int
}

// ElementRepository abstracts element storage including the transactional
// full-document replace and the publish snapshot.
type ElementRepository interface {
	CreateElement(ctx context.Context, record *Element) (*Element, error)
	GetElement(ctx context.Context, storeID uuid.UUID, id int64) (*Element, error)
	ListElements(ctx context.Context, storeID uuid.UUID) ([]*Element, error)
	ListPublishedElements(ctx context.Context, storeID uuid.UUID) ([]*Element, error)
	UpdateElement(ctx context.Context, record *Element) (*Element, error)
	SetElementLocation(ctx context.Context, storeID uuid.UUID, id int64, rollup *LocationRollup) error
	DeleteElement(ctx context.Context, storeID uuid.UUID, id int64) error
	ReplaceDocument(ctx context.Context, storeID uuid.UUID, incoming []*Element) ([]*Element, error)
	PublishDocument(ctx context.Context, storeID uuid.UUID, at time.Time) (int, error)
}

// LinkRepository abstracts product-link storage. Add and Replace are
// idempotent: duplicate pairs are no-ops, never errors.
type LinkRepository interface {
	AddLinks(ctx context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error
	RemoveLinks(ctx context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error
	ReplaceLinks(ctx context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error
	ListLinks(ctx context.Context, storeID uuid.UUID, elementID int64) ([]*ProductLink, error)
	ListLinkedProducts(ctx context.Context, storeID uuid.UUID, elementID int64) ([]*Product, error)
}

// StoreFlagRepository exposes the store-level lifecycle flags the document
// engine maintains. MarkDirty is the single entry point every mutator path
// uses to flip the draft flag.
type StoreFlagRepository interface {
	GetStore(ctx context.Context, id uuid.UUID) (*Store, error)
	MarkDirty(ctx context.Context, id uuid.UUID) error
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

// WithLogger injects the logger used for best-effort paths such as rollup
// recomputation. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	elements ElementRepository
	links    LinkRepository
	stores   StoreFlagRepository
	resolver *Resolver
	now      func() time.Time
	logger   interfaces.Logger
}

// NewService constructs the document service with the required dependencies.
func NewService(elements ElementRepository, links LinkRepository, stores StoreFlagRepository, opts ...ServiceOption) Service {
	s := &service{
		elements: elements,
		links:    links,
		stores:   stores,
		resolver: NewResolver(elements),
		now:      time.Now,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (in ElementInput) validate() error {
	if strings.TrimSpace(in.Kind) == "" {
		return ErrElementKindInvalid
	}
	return nil
}

// token returns the identity field, falling back to the metadata blob.
func (in ElementInput) token() string {
	if in.Token != "" {
		return in.Token
	}
	return in.Metadata.Token
}

func (in ElementInput) toElement(storeID uuid.UUID, now time.Time) *Element {
	meta := in.Metadata.Clone()
	if tok := in.token(); tok != "" {
		meta.Token = tok
	}
	return &Element{
		StoreID:   storeID,
		Kind:      strings.TrimSpace(in.Kind),
		X:         in.X,
		Y:         in.Y,
		Width:     in.Width,
		Height:    in.Height,
		ZIndex:    in.ZIndex,
		Color:     in.Color,
		Metadata:  meta,
		Published: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateElement inserts one unpublished element and marks the store dirty.
func (s *service) CreateElement(ctx context.Context, req CreateElementRequest) (*Element, error) {
	if req.StoreID == uuid.Nil {
		return nil, ErrStoreIDRequired
	}
	if err := req.Element.validate(); err != nil {
		return nil, err
	}

	created, err := s.elements.CreateElement(ctx, req.Element.toElement(req.StoreID, s.now()))
	if err != nil {
		return nil, err
	}
	if err := s.stores.MarkDirty(ctx, req.StoreID); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateElement patches one element, merging metadata over the stored blob,
// and demotes both the element and the store back to draft.
func (s *service) UpdateElement(ctx context.Context, req UpdateElementRequest) (*Element, error) {
	if req.StoreID == uuid.Nil {
		return nil, ErrStoreIDRequired
	}

	id, err := s.resolver.Resolve(ctx, req.StoreID, req.Ref)
	if err != nil {
		return nil, err
	}

	record, err := s.elements.GetElement(ctx, req.StoreID, id)
	if err != nil {
		return nil, err
	}

	if req.Kind != nil {
		if strings.TrimSpace(*req.Kind) == "" {
			return nil, ErrElementKindInvalid
		}
		record.Kind = strings.TrimSpace(*req.Kind)
	}
	if req.X != nil {
		record.X = *req.X
	}
	if req.Y != nil {
		record.Y = *req.Y
	}
	if req.Width != nil {
		record.Width = *req.Width
	}
	if req.Height != nil {
		record.Height = *req.Height
	}
	if req.ZIndex != nil {
		record.ZIndex = *req.ZIndex
	}
	if req.Color != nil {
		record.Color = req.Color
	}
	if req.Metadata != nil {
		record.Metadata = record.Metadata.Merge(*req.Metadata)
	}

	record.Published = false
	record.UpdatedAt = s.now()

	updated, err := s.elements.UpdateElement(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := s.stores.MarkDirty(ctx, req.StoreID); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteElement removes one element; its product links cascade inside the
// repository transaction.
func (s *service) DeleteElement(ctx context.Context, req DeleteElementRequest) error {
	if req.StoreID == uuid.Nil {
		return ErrStoreIDRequired
	}

	id, err := s.resolver.Resolve(ctx, req.StoreID, req.Ref)
	if err != nil {
		return err
	}
	return s.elements.DeleteElement(ctx, req.StoreID, id)
}

// ResolveElement maps a client-supplied pin reference to the current row id.
func (s *service) ResolveElement(ctx context.Context, storeID uuid.UUID, ref string) (int64, error) {
	return s.resolver.Resolve(ctx, storeID, ref)
}

// ListElements returns the full draft document for a store.
func (s *service) ListElements(ctx context.Context, storeID uuid.UUID) ([]*Element, error) {
	if storeID == uuid.Nil {
		return nil, ErrStoreIDRequired
	}
	return s.elements.ListElements(ctx, storeID)
}

// ListPublishedElements returns the consumer-visible snapshot.
func (s *service) ListPublishedElements(ctx context.Context, storeID uuid.UUID) ([]*Element, error) {
	if storeID == uuid.Nil {
		return nil, ErrStoreIDRequired
	}
	return s.elements.ListPublishedElements(ctx, storeID)
}
