package mapdoc

import (
	"context"

	"github.com/google/uuid"
)

// LinkProducts adds product associations to the resolved element. Pairs that
// already exist are no-ops. The location rollup is recomputed afterwards.
func (s *service) LinkProducts(ctx context.Context, req LinkRequest) (*Element, error) {
	elementID, productIDs, err := s.prepareLinkMutation(ctx, req, true)
	if err != nil {
		return nil, err
	}

	if err := s.links.AddLinks(ctx, req.StoreID, elementID, productIDs); err != nil {
		return nil, err
	}
	return s.finishLinkMutation(ctx, req.StoreID, elementID)
}

// UnlinkProducts removes product associations from the resolved element.
// Missing pairs are no-ops.
func (s *service) UnlinkProducts(ctx context.Context, req LinkRequest) (*Element, error) {
	elementID, productIDs, err := s.prepareLinkMutation(ctx, req, true)
	if err != nil {
		return nil, err
	}

	if err := s.links.RemoveLinks(ctx, req.StoreID, elementID, productIDs); err != nil {
		return nil, err
	}
	return s.finishLinkMutation(ctx, req.StoreID, elementID)
}

// SyncProductLinks replaces the element's full link set with the supplied
// products. An empty set clears every link.
func (s *service) SyncProductLinks(ctx context.Context, req LinkRequest) (*Element, error) {
	elementID, productIDs, err := s.prepareLinkMutation(ctx, req, false)
	if err != nil {
		return nil, err
	}

	if err := s.links.ReplaceLinks(ctx, req.StoreID, elementID, productIDs); err != nil {
		return nil, err
	}
	return s.finishLinkMutation(ctx, req.StoreID, elementID)
}

func (s *service) prepareLinkMutation(ctx context.Context, req LinkRequest, requireProducts bool) (int64, []int64, error) {
	if req.StoreID == uuid.Nil {
		return 0, nil, ErrStoreIDRequired
	}

	productIDs := dedupeProductIDs(req.ProductIDs)
	if requireProducts && len(productIDs) == 0 {
		return 0, nil, ErrProductIDsRequired
	}

	elementID, err := s.resolver.Resolve(ctx, req.StoreID, req.Ref)
	if err != nil {
		return 0, nil, err
	}
	return elementID, productIDs, nil
}

// finishLinkMutation recomputes the rollup and returns the refreshed element.
// Rollup recomputation is best-effort caching: failures are logged, never
// surfaced, and never roll back the link mutation that triggered them.
func (s *service) finishLinkMutation(ctx context.Context, storeID uuid.UUID, elementID int64) (*Element, error) {
	s.recomputeRollup(ctx, storeID, elementID)
	return s.elements.GetElement(ctx, storeID, elementID)
}

func (s *service) recomputeRollup(ctx context.Context, storeID uuid.UUID, elementID int64) {
	products, err := s.links.ListLinkedProducts(ctx, storeID, elementID)
	if err != nil {
		s.logger.Warn("mapdoc.rollup.recompute_failed", "store_id", storeID.String(), "element_id", elementID, "error", err)
		return
	}

	rollup := BuildLocationRollup(products)
	if err := s.elements.SetElementLocation(ctx, storeID, elementID, rollup); err != nil {
		s.logger.Warn("mapdoc.rollup.store_failed", "store_id", storeID.String(), "element_id", elementID, "error", err)
	}
}

func dedupeProductIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
