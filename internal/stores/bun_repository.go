package stores

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStoreRepository persists stores with bun, optionally wrapped with a
// read cache for the hot per-request store lookups.
type BunStoreRepository struct {
	repo repository.Repository[*mapdoc.Store]
}

var _ Repository = (*BunStoreRepository)(nil)

func NewBunStoreRepository(db *bun.DB) *BunStoreRepository {
	return NewBunStoreRepositoryWithCache(db, nil, nil)
}

// NewBunStoreRepositoryWithCache constructs a store Repository with optional caching.
func NewBunStoreRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunStoreRepository {
	base := NewStoreRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunStoreRepository{repo: wrapped}
}

func (r *BunStoreRepository) Create(ctx context.Context, record *mapdoc.Store) (*mapdoc.Store, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunStoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*mapdoc.Store, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "store", id.String())
	}
	return result, nil
}

func (r *BunStoreRepository) GetBySlug(ctx context.Context, slug string) (*mapdoc.Store, error) {
	result, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "store", slug)
	}
	return result, nil
}

func (r *BunStoreRepository) List(ctx context.Context) ([]*mapdoc.Store, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &mapdoc.NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
