package mapsync

import (
	"github.com/goliatone/go-mapsync/internal/di"
	"github.com/goliatone/go-mapsync/internal/domain"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/internal/stores"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
	"github.com/uptrace/bun"
)

// DocumentService exports the map-document synchronization contract for
// consumers of the mapsync package.
type DocumentService = mapdoc.Service

// StoreService exports the store registry contract.
type StoreService = stores.Service

// Store exports the store record.
type Store = mapdoc.Store

// Element exports the map element record.
type Element = mapdoc.Element

// ProductLink exports the element-to-product link record.
type ProductLink = mapdoc.ProductLink

// Product exports the catalog product record consumed by the location rollup.
type Product = mapdoc.Product

// ElementInput exports the editor-authored element payload.
type ElementInput = mapdoc.ElementInput

// ElementMetadata exports the element metadata document.
type ElementMetadata = mapdoc.ElementMetadata

// LocationRollup exports the denormalized product-location summary.
type LocationRollup = mapdoc.LocationRollup

// SaveDocumentRequest exports the bulk replace-save request.
type SaveDocumentRequest = mapdoc.SaveDocumentRequest

// SaveDocumentResult exports the bulk replace-save result.
type SaveDocumentResult = mapdoc.SaveDocumentResult

// CreateElementRequest exports the single-element create request.
type CreateElementRequest = mapdoc.CreateElementRequest

// UpdateElementRequest exports the single-element patch request.
type UpdateElementRequest = mapdoc.UpdateElementRequest

// DeleteElementRequest exports the single-element delete request.
type DeleteElementRequest = mapdoc.DeleteElementRequest

// LinkRequest exports the product link mutation request.
type LinkRequest = mapdoc.LinkRequest

// PublishResult exports the publish snapshot result.
type PublishResult = mapdoc.PublishResult

// DocumentStatus exports the draft/published status summary.
type DocumentStatus = mapdoc.DocumentStatus

// Status names the lifecycle state of a store map document.
type Status = domain.Status

const (
	StatusDraft     = domain.StatusDraft
	StatusPublished = domain.StatusPublished
)

// CreateStoreRequest exports the store registration request.
type CreateStoreRequest = stores.CreateStoreRequest

// NotFoundError exports the typed miss returned by repositories.
type NotFoundError = mapdoc.NotFoundError

// ValidationError exports the document payload validation failure.
type ValidationError = mapdoc.ValidationError

// Module represents the top level map synchronization runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a mapsync module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Documents returns the configured document synchronization service.
func (m *Module) Documents() DocumentService {
	return m.container.DocumentService()
}

// Stores returns the configured store registry service.
func (m *Module) Stores() StoreService {
	return m.container.StoreService()
}

// DB returns the bound database, nil when running on memory storage.
func (m *Module) DB() *bun.DB {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.DB()
}

// Logger returns a module-scoped logger from the configured provider.
func (m *Module) Logger(module string) interfaces.Logger {
	return m.container.Logger(module)
}
