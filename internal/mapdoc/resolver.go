package mapdoc

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// maxElementID bounds the id-parse step of resolution. References above this
// ceiling are treated as opaque tokens, never as row ids.
const maxElementID = int64(1)<<53 - 1

// Resolver maps an ephemeral client-supplied pin reference to the current
// element row id. Clients may hold either a last-known persisted id (after a
// save/reload) or the original client token (no save since placement); the
// resolver serves both without the caller knowing which it holds.
type Resolver struct {
	elements ElementRepository
}

// NewResolver constructs a resolver over the supplied element storage.
func NewResolver(elements ElementRepository) *Resolver {
	return &Resolver{elements: elements}
}

// Resolve applies the fixed precedence: a reference that parses as a positive
// in-range integer and names an existing row in the store wins outright; only
// then is the reference matched against element tokens, and only a unique
// token match resolves. Anything else fails with ErrElementUnresolved.
func (r *Resolver) Resolve(ctx context.Context, storeID uuid.UUID, ref string) (int64, error) {
	if storeID == uuid.Nil {
		return 0, ErrStoreIDRequired
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, &UnresolvedError{Ref: ref}
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 && id <= maxElementID {
		record, err := r.elements.GetElement(ctx, storeID, id)
		if err == nil {
			return record.ID, nil
		}
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return 0, err
		}
	}

	records, err := r.elements.ListElements(ctx, storeID)
	if err != nil {
		return 0, err
	}

	var matched int64
	matches := 0
	for _, record := range records {
		if record.Token() == ref {
			matched = record.ID
			matches++
		}
	}
	if matches == 1 {
		return matched, nil
	}
	return 0, &UnresolvedError{Ref: ref}
}
