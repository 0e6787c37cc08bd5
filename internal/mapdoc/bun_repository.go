package mapdoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists the map document with bun. It implements
// ElementRepository, LinkRepository, and StoreFlagRepository so the
// multi-entity transactions (document replace, publish, cascade delete)
// stay inside one component.
type BunRepository struct {
	db *bun.DB
}

var (
	_ ElementRepository   = (*BunRepository)(nil)
	_ LinkRepository      = (*BunRepository)(nil)
	_ StoreFlagRepository = (*BunRepository)(nil)
)

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) CreateElement(ctx context.Context, record *Element) (*Element, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert element: %w", err)
	}
	return record, nil
}

func (r *BunRepository) GetElement(ctx context.Context, storeID uuid.UUID, id int64) (*Element, error) {
	record := &Element{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.store_id = ?", storeID).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "element", Key: strconv.FormatInt(id, 10)}
		}
		return nil, fmt.Errorf("select element: %w", err)
	}
	return record, nil
}

func (r *BunRepository) ListElements(ctx context.Context, storeID uuid.UUID) ([]*Element, error) {
	records := []*Element{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.store_id = ?", storeID).
		OrderExpr("?TableAlias.z_index ASC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	return records, nil
}

func (r *BunRepository) ListPublishedElements(ctx context.Context, storeID uuid.UUID) ([]*Element, error) {
	records := []*Element{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.store_id = ?", storeID).
		Where("?TableAlias.published = ?", true).
		OrderExpr("?TableAlias.z_index ASC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published elements: %w", err)
	}
	return records, nil
}

func (r *BunRepository) UpdateElement(ctx context.Context, record *Element) (*Element, error) {
	result, err := r.db.NewUpdate().
		Model(record).
		Column("type", "x", "y", "width", "height", "z_index", "color", "metadata", "published", "published_at", "updated_at").
		WherePK().
		Where("?TableAlias.store_id = ?", record.StoreID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update element: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("element update rows affected: %w", err)
	}
	if affected == 0 {
		return nil, &NotFoundError{Resource: "element", Key: strconv.FormatInt(record.ID, 10)}
	}
	return record, nil
}

func (r *BunRepository) SetElementLocation(ctx context.Context, storeID uuid.UUID, id int64, rollup *LocationRollup) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &Element{}
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.store_id = ?", storeID).
			Where("?TableAlias.id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &NotFoundError{Resource: "element", Key: strconv.FormatInt(id, 10)}
			}
			return fmt.Errorf("select element for rollup: %w", err)
		}

		record.Metadata.Location = rollup.Clone()
		if _, err := tx.NewUpdate().
			Model(record).
			Column("metadata").
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("store element rollup: %w", err)
		}
		return nil
	})
}

// DeleteElement removes the row and cascades its product links in the same
// transaction.
func (r *BunRepository) DeleteElement(ctx context.Context, storeID uuid.UUID, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ProductLink)(nil)).
			Where("?TableAlias.store_id = ?", storeID).
			Where("?TableAlias.element_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete element links: %w", err)
		}

		result, err := tx.NewDelete().
			Model((*Element)(nil)).
			Where("?TableAlias.store_id = ?", storeID).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete element: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("element delete rows affected: %w", err)
		}
		if affected == 0 {
			return &NotFoundError{Resource: "element", Key: strconv.FormatInt(id, 10)}
		}
		return nil
	})
}

// ReplaceDocument wipes and rebuilds the store's element set in one
// transaction. Links are remembered as {product, reconcile key} pairs before
// the wipe and reattached to whichever new row claims the same key; when two
// incoming elements carry the same token, the last one wins the mapping.
func (r *BunRepository) ReplaceDocument(ctx context.Context, storeID uuid.UUID, incoming []*Element) ([]*Element, error) {
	inserted := make([]*Element, 0, len(incoming))
	now := time.Now().UTC()

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current := []*Element{}
		if err := tx.NewSelect().
			Model(&current).
			Where("?TableAlias.store_id = ?", storeID).
			Scan(ctx); err != nil {
			return fmt.Errorf("snapshot elements: %w", err)
		}

		keyByID := make(map[int64]string, len(current))
		for _, record := range current {
			keyByID[record.ID] = reconcileKey(record)
		}

		links := []*ProductLink{}
		if err := tx.NewSelect().
			Model(&links).
			Where("?TableAlias.store_id = ?", storeID).
			Scan(ctx); err != nil {
			return fmt.Errorf("snapshot links: %w", err)
		}

		type remembered struct {
			productID int64
			key       string
		}
		kept := make([]remembered, 0, len(links))
		for _, link := range links {
			key, ok := keyByID[link.ElementID]
			if !ok || key == "" {
				continue
			}
			kept = append(kept, remembered{productID: link.ProductID, key: key})
		}

		if _, err := tx.NewDelete().
			Model((*ProductLink)(nil)).
			Where("?TableAlias.store_id = ?", storeID).
			Exec(ctx); err != nil {
			return fmt.Errorf("wipe links: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*Element)(nil)).
			Where("?TableAlias.store_id = ?", storeID).
			Exec(ctx); err != nil {
			return fmt.Errorf("wipe elements: %w", err)
		}

		newIDByKey := make(map[string]int64, len(incoming))
		for _, record := range incoming {
			cloned := *record
			cloned.ID = 0
			cloned.StoreID = storeID
			if cloned.CreatedAt.IsZero() {
				cloned.CreatedAt = now
			}
			if cloned.UpdatedAt.IsZero() {
				cloned.UpdatedAt = now
			}
			if _, err := tx.NewInsert().Model(&cloned).Exec(ctx); err != nil {
				return fmt.Errorf("reinsert element: %w", err)
			}
			inserted = append(inserted, &cloned)
			if tok := cloned.Token(); tok != "" {
				newIDByKey[tok] = cloned.ID
			}
		}

		for _, pair := range kept {
			newID, ok := newIDByKey[pair.key]
			if !ok {
				continue
			}
			link := &ProductLink{
				ID:        uuid.New(),
				StoreID:   storeID,
				ProductID: pair.productID,
				ElementID: newID,
				CreatedAt: now,
			}
			if _, err := tx.NewInsert().
				Model(link).
				On("CONFLICT (store_id, product_id, element_id) DO NOTHING").
				Exec(ctx); err != nil {
				return fmt.Errorf("restore link: %w", err)
			}
		}

		return markDirtyTx(ctx, tx, storeID, now)
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// PublishDocument stamps every current element and the store itself in one
// transaction; the count of stamped elements is returned.
func (r *BunRepository) PublishDocument(ctx context.Context, storeID uuid.UUID, at time.Time) (int, error) {
	stamped := 0
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*Element)(nil)).
			Set("published = ?", true).
			Set("published_at = ?", at).
			Set("updated_at = ?", at).
			Where("?TableAlias.store_id = ?", storeID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("publish elements: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("publish rows affected: %w", err)
		}
		stamped = int(affected)

		storeResult, err := tx.NewUpdate().
			Model((*Store)(nil)).
			Set("draft_changes = ?", false).
			Set("published_at = ?", at).
			Set("updated_at = ?", at).
			Where("?TableAlias.id = ?", storeID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("publish store: %w", err)
		}
		storeAffected, err := storeResult.RowsAffected()
		if err != nil {
			return fmt.Errorf("publish store rows affected: %w", err)
		}
		if storeAffected == 0 {
			return &NotFoundError{Resource: "store", Key: storeID.String()}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stamped, nil
}

func (r *BunRepository) GetStore(ctx context.Context, id uuid.UUID) (*Store, error) {
	record := &Store{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "store", Key: id.String()}
		}
		return nil, fmt.Errorf("select store: %w", err)
	}
	return record, nil
}

// MarkDirty is an idempotent set-to-true, safe under concurrent auto-saves.
func (r *BunRepository) MarkDirty(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*Store)(nil)).
		Set("draft_changes = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark store dirty: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark dirty rows affected: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Resource: "store", Key: id.String()}
	}
	return nil
}

func markDirtyTx(ctx context.Context, tx bun.Tx, storeID uuid.UUID, at time.Time) error {
	result, err := tx.NewUpdate().
		Model((*Store)(nil)).
		Set("draft_changes = ?", true).
		Set("updated_at = ?", at).
		Where("?TableAlias.id = ?", storeID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark store dirty: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark dirty rows affected: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{Resource: "store", Key: storeID.String()}
	}
	return nil
}

func (r *BunRepository) AddLinks(ctx context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, productID := range productIDs {
			link := &ProductLink{
				ID:        uuid.New(),
				StoreID:   storeID,
				ProductID: productID,
				ElementID: elementID,
				CreatedAt: now,
			}
			if _, err := tx.NewInsert().
				Model(link).
				On("CONFLICT (store_id, product_id, element_id) DO NOTHING").
				Exec(ctx); err != nil {
				return fmt.Errorf("insert link: %w", err)
			}
		}
		return nil
	})
}

func (r *BunRepository) RemoveLinks(ctx context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	if _, err := r.db.NewDelete().
		Model((*ProductLink)(nil)).
		Where("?TableAlias.store_id = ?", storeID).
		Where("?TableAlias.element_id = ?", elementID).
		Where("?TableAlias.product_id IN (?)", bun.In(productIDs)).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete links: %w", err)
	}
	return nil
}

func (r *BunRepository) ReplaceLinks(ctx context.Context, storeID uuid.UUID, elementID int64, productIDs []int64) error {
	now := time.Now().UTC()
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ProductLink)(nil)).
			Where("?TableAlias.store_id = ?", storeID).
			Where("?TableAlias.element_id = ?", elementID).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear links: %w", err)
		}

		for _, productID := range productIDs {
			link := &ProductLink{
				ID:        uuid.New(),
				StoreID:   storeID,
				ProductID: productID,
				ElementID: elementID,
				CreatedAt: now,
			}
			if _, err := tx.NewInsert().
				Model(link).
				On("CONFLICT (store_id, product_id, element_id) DO NOTHING").
				Exec(ctx); err != nil {
				return fmt.Errorf("insert link: %w", err)
			}
		}
		return nil
	})
}

func (r *BunRepository) ListLinks(ctx context.Context, storeID uuid.UUID, elementID int64) ([]*ProductLink, error) {
	records := []*ProductLink{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.store_id = ?", storeID).
		Where("?TableAlias.element_id = ?", elementID).
		OrderExpr("?TableAlias.product_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return records, nil
}

func (r *BunRepository) ListLinkedProducts(ctx context.Context, storeID uuid.UUID, elementID int64) ([]*Product, error) {
	records := []*Product{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.id IN (SELECT product_id FROM product_links WHERE store_id = ? AND element_id = ?)", storeID, elementID).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list linked products: %w", err)
	}
	return records, nil
}
