package mapdoc

import (
	"context"

	"github.com/goliatone/go-mapsync/internal/domain"
	"github.com/google/uuid"
)

// Publish snapshots the current document: every existing element is stamped
// published, the store's draft flag clears, and the publish timestamp is
// recorded on both. Elements created afterwards start unpublished and flip
// the store back to draft through the incremental mutator.
func (s *service) Publish(ctx context.Context, storeID uuid.UUID) (*PublishResult, error) {
	if storeID == uuid.Nil {
		return nil, ErrStoreIDRequired
	}
	if _, err := s.stores.GetStore(ctx, storeID); err != nil {
		return nil, err
	}

	now := s.now()
	stamped, err := s.elements.PublishDocument(ctx, storeID, now)
	if err != nil {
		return nil, err
	}

	return &PublishResult{
		StoreID:     storeID,
		PublishedAt: now,
		Elements:    stamped,
	}, nil
}

// Status computes the draft state. The stored flag is a fast-path cache; the
// per-element flags remain authoritative, so the two are OR-ed together. A
// store that has never been published is always a draft.
func (s *service) Status(ctx context.Context, storeID uuid.UUID) (*DocumentStatus, error) {
	if storeID == uuid.Nil {
		return nil, ErrStoreIDRequired
	}

	record, err := s.stores.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	elements, err := s.elements.ListElements(ctx, storeID)
	if err != nil {
		return nil, err
	}
	unpublished := 0
	for _, el := range elements {
		if !el.Published {
			unpublished++
		}
	}

	dirty := record.DraftChanges || unpublished > 0 || record.PublishedAt == nil
	state := domain.StatusPublished
	if dirty {
		state = domain.StatusDraft
	}

	return &DocumentStatus{
		StoreID:          storeID,
		State:            state,
		HasDraftChanges:  dirty,
		PublishedAt:      record.PublishedAt,
		ElementCount:     len(elements),
		UnpublishedCount: unpublished,
	}, nil
}
