package mapdoc

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation of the document storage
// interfaces for scaffolding and tests. It mirrors the transactional
// semantics of the bun repository: replace-save and delete are applied
// all-or-nothing under one lock.
type MemoryRepository struct {
	mu       sync.RWMutex
	stores   map[uuid.UUID]*Store
	elements map[int64]*Element
	links    map[uuid.UUID]*ProductLink
	products map[int64]*Product
	nextID   int64
}

var (
	_ ElementRepository   = (*MemoryRepository)(nil)
	_ LinkRepository      = (*MemoryRepository)(nil)
	_ StoreFlagRepository = (*MemoryRepository)(nil)
)

// NewMemoryRepository creates an empty in-memory document repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		stores:   make(map[uuid.UUID]*Store),
		elements: make(map[int64]*Element),
		links:    make(map[uuid.UUID]*ProductLink),
		products: make(map[int64]*Product),
	}
}

// PutStore seeds a store record.
func (m *MemoryRepository) PutStore(record *Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.stores[copied.ID] = &copied
}

// GetStoreBySlug returns the store registered under slug.
func (m *MemoryRepository) GetStoreBySlug(slug string) (*Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.stores {
		if record.Slug == slug {
			copied := *record
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Resource: "store", Key: slug}
}

// ListStores returns every registered store.
func (m *MemoryRepository) ListStores() []*Store {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Store, 0, len(m.stores))
	for _, record := range m.stores {
		copied := *record
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// PutProduct seeds a catalog product consumed by the rollup.
func (m *MemoryRepository) PutProduct(record *Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.products[copied.ID] = &copied
}

func (m *MemoryRepository) CreateElement(_ context.Context, record *Element) (*Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneElement(record)
	m.nextID++
	copied.ID = m.nextID
	m.elements[copied.ID] = copied
	return cloneElement(copied), nil
}

func (m *MemoryRepository) GetElement(_ context.Context, storeID uuid.UUID, id int64) (*Element, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.elements[id]
	if !ok || record.StoreID != storeID {
		return nil, &NotFoundError{Resource: "element", Key: strconv.FormatInt(id, 10)}
	}
	return cloneElement(record), nil
}

func (m *MemoryRepository) ListElements(_ context.Context, storeID uuid.UUID) ([]*Element, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(storeID, false), nil
}

func (m *MemoryRepository) ListPublishedElements(_ context.Context, storeID uuid.UUID) ([]*Element, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(storeID, true), nil
}

func (m *MemoryRepository) listLocked(storeID uuid.UUID, publishedOnly bool) []*Element {
	out := []*Element{}
	for _, record := range m.elements {
		if record.StoreID != storeID {
			continue
		}
		if publishedOnly && !record.Published {
			continue
		}
		out = append(out, cloneElement(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MemoryRepository) UpdateElement(_ context.Context, record *Element) (*Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.elements[record.ID]
	if !ok || existing.StoreID != record.StoreID {
		return nil, &NotFoundError{Resource: "element", Key: strconv.FormatInt(record.ID, 10)}
	}
	copied := cloneElement(record)
	m.elements[copied.ID] = copied
	return cloneElement(copied), nil
}

func (m *MemoryRepository) SetElementLocation(_ context.Context, storeID uuid.UUID, id int64, rollup *LocationRollup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.elements[id]
	if !ok || record.StoreID != storeID {
		return &NotFoundError{Resource: "element", Key: strconv.FormatInt(id, 10)}
	}
	record.Metadata.Location = rollup.Clone()
	return nil
}

func (m *MemoryRepository) DeleteElement(_ context.Context, storeID uuid.UUID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.elements[id]
	if !ok || record.StoreID != storeID {
		return &NotFoundError{Resource: "element", Key: strconv.FormatInt(id, 10)}
	}
	delete(m.elements, id)
	for linkID, link := range m.links {
		if link.StoreID == storeID && link.ElementID == id {
			delete(m.links, linkID)
		}
	}
	return nil
}

func (m *MemoryRepository) ReplaceDocument(_ context.Context, storeID uuid.UUID, incoming []*Element) ([]*Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[storeID]
	if !ok {
		return nil, &NotFoundError{Resource: "store", Key: storeID.String()}
	}

	keyByID := map[int64]string{}
	for _, record := range m.elements {
		if record.StoreID == storeID {
			keyByID[record.ID] = reconcileKey(record)
		}
	}

	type remembered struct {
		productID int64
		key       string
	}
	kept := []remembered{}
	for linkID, link := range m.links {
		if link.StoreID != storeID {
			continue
		}
		if key := keyByID[link.ElementID]; key != "" {
			kept = append(kept, remembered{productID: link.ProductID, key: key})
		}
		delete(m.links, linkID)
	}

	for id, record := range m.elements {
		if record.StoreID == storeID {
			delete(m.elements, id)
		}
	}

	inserted := make([]*Element, 0, len(incoming))
	newIDByKey := map[string]int64{}
	now := time.Now().UTC()
	for _, record := range incoming {
		copied := cloneElement(record)
		m.nextID++
		copied.ID = m.nextID
		copied.StoreID = storeID
		m.elements[copied.ID] = copied
		inserted = append(inserted, cloneElement(copied))
		if tok := copied.Token(); tok != "" {
			newIDByKey[tok] = copied.ID
		}
	}

	for _, pair := range kept {
		newID, ok := newIDByKey[pair.key]
		if !ok {
			continue
		}
		if m.linkExistsLocked(storeID, pair.productID, newID) {
			continue
		}
		link := &ProductLink{
			ID:        uuid.New(),
			StoreID:   storeID,
			ProductID: pair.productID,
			ElementID: newID,
			CreatedAt: now,
		}
		m.links[link.ID] = link
	}

	store.DraftChanges = true
	store.UpdatedAt = now
	return inserted, nil
}

func (m *MemoryRepository) PublishDocument(_ context.Context, storeID uuid.UUID, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[storeID]
	if !ok {
		return 0, &NotFoundError{Resource: "store", Key: storeID.String()}
	}

	stamped := 0
	for _, record := range m.elements {
		if record.StoreID != storeID {
			continue
		}
		record.Published = true
		publishedAt := at
		record.PublishedAt = &publishedAt
		record.UpdatedAt = at
		stamped++
	}

	store.DraftChanges = false
	publishedAt := at
	store.PublishedAt = &publishedAt
	store.UpdatedAt = at
	return stamped, nil
}

func (m *MemoryRepository) GetStore(_ context.Context, id uuid.UUID) (*Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.stores[id]
	if !ok {
		return nil, &NotFoundError{Resource: "store", Key: id.String()}
	}
	copied := *record
	return &copied, nil
}

func (m *MemoryRepository) MarkDirty(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.stores[id]
	if !ok {
		return &NotFoundError{Resource: "store", Key: id.String()}
	}
	record.DraftChanges = true
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepository) AddLinks(_ context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	for _, productID := range productIDs {
		if m.linkExistsLocked(storeID, productID, elementID) {
			continue
		}
		link := &ProductLink{
			ID:        uuid.New(),
			StoreID:   storeID,
			ProductID: productID,
			ElementID: elementID,
			CreatedAt: now,
		}
		m.links[link.ID] = link
	}
	return nil
}

func (m *MemoryRepository) RemoveLinks(_ context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[int64]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}
	for linkID, link := range m.links {
		if link.StoreID != storeID || link.ElementID != elementID {
			continue
		}
		if _, ok := wanted[link.ProductID]; ok {
			delete(m.links, linkID)
		}
	}
	return nil
}

func (m *MemoryRepository) ReplaceLinks(_ context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for linkID, link := range m.links {
		if link.StoreID == storeID && link.ElementID == elementID {
			delete(m.links, linkID)
		}
	}
	now := time.Now().UTC()
	for _, productID := range productIDs {
		if m.linkExistsLocked(storeID, productID, elementID) {
			continue
		}
		link := &ProductLink{
			ID:        uuid.New(),
			StoreID:   storeID,
			ProductID: productID,
			ElementID: elementID,
			CreatedAt: now,
		}
		m.links[link.ID] = link
	}
	return nil
}

func (m *MemoryRepository) ListLinks(_ context.Context, storeID uuid.UUID, elementID int64) ([]*ProductLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*ProductLink{}
	for _, link := range m.links {
		if link.StoreID == storeID && link.ElementID == elementID {
			copied := *link
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (m *MemoryRepository) ListLinkedProducts(_ context.Context, storeID uuid.UUID, elementID int64) ([]*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*Product{}
	for _, link := range m.links {
		if link.StoreID != storeID || link.ElementID != elementID {
			continue
		}
		if product, ok := m.products[link.ProductID]; ok {
			copied := *product
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) linkExistsLocked(storeID uuid.UUID, productID, elementID int64) bool {
	for _, link := range m.links {
		if link.StoreID == storeID && link.ProductID == productID && link.ElementID == elementID {
			return true
		}
	}
	return false
}

func cloneElement(src *Element) *Element {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Metadata = src.Metadata.Clone()
	if src.Color != nil {
		color := *src.Color
		copied.Color = &color
	}
	if src.PublishedAt != nil {
		at := *src.PublishedAt
		copied.PublishedAt = &at
	}
	return &copied
}
