package stores

import (
	"context"
	"sync"

	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/google/uuid"
)

// MemoryStoreRepository is an in-memory Repository for scaffolding and tests.
type MemoryStoreRepository struct {
	mu        sync.RWMutex
	stores    map[uuid.UUID]*mapdoc.Store
	slugIndex map[string]uuid.UUID
}

var _ Repository = (*MemoryStoreRepository)(nil)

// NewMemoryStoreRepository creates an empty in-memory store repository.
func NewMemoryStoreRepository() *MemoryStoreRepository {
	return &MemoryStoreRepository{
		stores:    make(map[uuid.UUID]*mapdoc.Store),
		slugIndex: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStoreRepository) Create(_ context.Context, record *mapdoc.Store) (*mapdoc.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	m.stores[copied.ID] = &copied
	m.slugIndex[copied.Slug] = copied.ID
	out := copied
	return &out, nil
}

func (m *MemoryStoreRepository) GetByID(_ context.Context, id uuid.UUID) (*mapdoc.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.stores[id]
	if !ok {
		return nil, &mapdoc.NotFoundError{Resource: "store", Key: id.String()}
	}
	copied := *record
	return &copied, nil
}

func (m *MemoryStoreRepository) GetBySlug(_ context.Context, slug string) (*mapdoc.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &mapdoc.NotFoundError{Resource: "store", Key: slug}
	}
	copied := *m.stores[id]
	return &copied, nil
}

func (m *MemoryStoreRepository) List(_ context.Context) ([]*mapdoc.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*mapdoc.Store, 0, len(m.stores))
	for _, record := range m.stores {
		copied := *record
		out = append(out, &copied)
	}
	return out, nil
}
