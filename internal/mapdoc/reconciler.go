package mapdoc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveDocument atomically replaces the entire element set of a store. The
// repository transaction snapshots every current link keyed by its element's
// token, wipes the document, reinserts the incoming elements as new rows, and
// restores the links whose token survives into the new set. Links whose token
// disappears drop silently; nothing is ever partially applied.
func (s *service) SaveDocument(ctx context.Context, req SaveDocumentRequest) (*SaveDocumentResult, error) {
	if req.StoreID == uuid.Nil {
		return nil, ErrStoreIDRequired
	}
	if req.Elements == nil {
		return nil, ErrElementsRequired
	}

	now := s.now()
	prepared := make([]*Element, 0, len(req.Elements))
	for i, input := range req.Elements {
		if err := input.validate(); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		prepared = append(prepared, input.toElement(req.StoreID, now))
	}

	replaced, err := s.elements.ReplaceDocument(ctx, req.StoreID, prepared)
	if err != nil {
		return nil, err
	}

	result := &SaveDocumentResult{
		Elements: replaced,
		TokenIDs: make(map[string]int64, len(replaced)),
	}
	for _, record := range replaced {
		if tok := record.Token(); tok != "" {
			result.TokenIDs[tok] = record.ID
		}
	}
	return result, nil
}

// reconcileKey is the identity a link is remembered under while the document
// is wiped: the element's token when it has one, otherwise its old row id.
// Tokenless elements therefore only keep their links when the incoming
// payload re-references that exact row id.
func reconcileKey(record *Element) string {
	if tok := record.Token(); tok != "" {
		return tok
	}
	return fmt.Sprintf("%d", record.ID)
}
