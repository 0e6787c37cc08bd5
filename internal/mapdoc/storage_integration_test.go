package mapdoc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newTestDB(t *testing.T, name string) *bun.DB {
	t.Helper()
	sqlDB, err := testsupport.NewNamedSQLiteMemoryDB(name)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []any{
		(*mapdoc.Store)(nil),
		(*mapdoc.Product)(nil),
		(*mapdoc.Element)(nil),
		(*mapdoc.ProductLink)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func seedBunStore(t *testing.T, db *bun.DB) uuid.UUID {
	t.Helper()
	record := &mapdoc.Store{
		ID:        uuid.New(),
		Name:      "Downtown",
		Slug:      "downtown",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := db.NewInsert().Model(record).Exec(context.Background()); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return record.ID
}

func seedBunProduct(t *testing.T, db *bun.DB, name string, aisle, shelf *string) int64 {
	t.Helper()
	record := &mapdoc.Product{Name: name, Aisle: aisle, Shelf: shelf}
	if _, err := db.NewInsert().Model(record).Exec(context.Background()); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return record.ID
}

func TestBunRepositoryElementLifecycle(t *testing.T) {
	db := newTestDB(t, "mapdoc_lifecycle")
	repo := mapdoc.NewBunRepository(db)
	ctx := context.Background()
	storeID := seedBunStore(t, db)

	created, err := repo.CreateElement(ctx, &mapdoc.Element{
		StoreID:  storeID,
		Kind:     "pin",
		X:        10,
		Y:        20,
		Width:    30,
		Height:   40,
		Metadata: mapdoc.ElementMetadata{Token: "pin-a", Extra: map[string]any{"fill": "#f00"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected autoincrement id")
	}

	fetched, err := repo.GetElement(ctx, storeID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Metadata.Token != "pin-a" {
		t.Fatalf("expected token round-trip, got %q", fetched.Metadata.Token)
	}
	if fetched.Metadata.Extra["fill"] != "#f00" {
		t.Fatalf("expected freeform metadata round-trip, got %+v", fetched.Metadata.Extra)
	}

	fetched.X = 99
	if _, err := repo.UpdateElement(ctx, fetched); err != nil {
		t.Fatalf("update: %v", err)
	}
	refetched, err := repo.GetElement(ctx, storeID, created.ID)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if refetched.X != 99 {
		t.Fatalf("expected x persisted, got %v", refetched.X)
	}

	if err := repo.DeleteElement(ctx, storeID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *mapdoc.NotFoundError
	if _, err := repo.GetElement(ctx, storeID, created.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestBunRepositoryReplaceDocumentPreservesLinks(t *testing.T) {
	db := newTestDB(t, "mapdoc_replace")
	repo := mapdoc.NewBunRepository(db)
	ctx := context.Background()
	storeID := seedBunStore(t, db)
	productID := seedBunProduct(t, db, "Milk", strPtr("A1"), strPtr("S1"))

	first, err := repo.ReplaceDocument(ctx, storeID, []*mapdoc.Element{
		{Kind: "pin", Metadata: mapdoc.ElementMetadata{Token: "pin-a"}},
		{Kind: "zone"},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 inserted got %d", len(first))
	}

	if err := repo.AddLinks(ctx, storeID, first[0].ID, []int64{productID}); err != nil {
		t.Fatalf("add links: %v", err)
	}

	second, err := repo.ReplaceDocument(ctx, storeID, []*mapdoc.Element{
		{Kind: "pin", Metadata: mapdoc.ElementMetadata{Token: "pin-a"}},
	})
	if err != nil {
		t.Fatalf("re-replace: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected 1 element got %d", len(second))
	}
	if second[0].ID == first[0].ID {
		t.Fatal("expected fresh row id")
	}

	links, err := repo.ListLinks(ctx, storeID, second[0].ID)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 1 || links[0].ProductID != productID {
		t.Fatalf("expected link carried to new row, got %+v", links)
	}

	store, err := repo.GetStore(ctx, storeID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if !store.DraftChanges {
		t.Fatal("expected replace to mark store dirty")
	}
}

func TestBunRepositoryPublishDocument(t *testing.T) {
	db := newTestDB(t, "mapdoc_publish")
	repo := mapdoc.NewBunRepository(db)
	ctx := context.Background()
	storeID := seedBunStore(t, db)

	if _, err := repo.ReplaceDocument(ctx, storeID, []*mapdoc.Element{
		{Kind: "pin", Metadata: mapdoc.ElementMetadata{Token: "pin-a"}},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	stamped, err := repo.PublishDocument(ctx, storeID, at)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if stamped != 1 {
		t.Fatalf("expected 1 stamped got %d", stamped)
	}

	published, err := repo.ListPublishedElements(ctx, storeID)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 1 || !published[0].Published {
		t.Fatalf("expected published element, got %+v", published)
	}

	store, err := repo.GetStore(ctx, storeID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if store.DraftChanges {
		t.Fatal("expected draft flag cleared")
	}
	if store.PublishedAt == nil {
		t.Fatal("expected store publish timestamp")
	}
}

func TestBunRepositoryLinksAndRollupProducts(t *testing.T) {
	db := newTestDB(t, "mapdoc_links")
	repo := mapdoc.NewBunRepository(db)
	ctx := context.Background()
	storeID := seedBunStore(t, db)
	milk := seedBunProduct(t, db, "Milk", strPtr("A1"), strPtr("S1"))
	bread := seedBunProduct(t, db, "Bread", strPtr("B2"), nil)

	elements, err := repo.ReplaceDocument(ctx, storeID, []*mapdoc.Element{
		{Kind: "pin", Metadata: mapdoc.ElementMetadata{Token: "pin-a"}},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	elementID := elements[0].ID

	// duplicate add is a no-op
	if err := repo.AddLinks(ctx, storeID, elementID, []int64{milk, bread}); err != nil {
		t.Fatalf("add links: %v", err)
	}
	if err := repo.AddLinks(ctx, storeID, elementID, []int64{milk}); err != nil {
		t.Fatalf("re-add link: %v", err)
	}

	products, err := repo.ListLinkedProducts(ctx, storeID, elementID)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 linked products got %d", len(products))
	}

	rollup := mapdoc.BuildLocationRollup(products)
	if err := repo.SetElementLocation(ctx, storeID, elementID, rollup); err != nil {
		t.Fatalf("set location: %v", err)
	}
	fetched, err := repo.GetElement(ctx, storeID, elementID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Metadata.Location == nil || fetched.Metadata.Location.LocationCount != 2 {
		t.Fatalf("expected stored rollup, got %+v", fetched.Metadata.Location)
	}

	if err := repo.RemoveLinks(ctx, storeID, elementID, []int64{milk, bread}); err != nil {
		t.Fatalf("remove links: %v", err)
	}
	if err := repo.SetElementLocation(ctx, storeID, elementID, nil); err != nil {
		t.Fatalf("clear location: %v", err)
	}
	cleared, err := repo.GetElement(ctx, storeID, elementID)
	if err != nil {
		t.Fatalf("get cleared: %v", err)
	}
	if cleared.Metadata.Location != nil {
		t.Fatalf("expected rollup cleared, got %+v", cleared.Metadata.Location)
	}
}

func TestBunRepositoryMarkDirtyIdempotent(t *testing.T) {
	db := newTestDB(t, "mapdoc_dirty")
	repo := mapdoc.NewBunRepository(db)
	ctx := context.Background()
	storeID := seedBunStore(t, db)

	for i := 0; i < 2; i++ {
		if err := repo.MarkDirty(ctx, storeID); err != nil {
			t.Fatalf("mark dirty %d: %v", i, err)
		}
	}

	var notFound *mapdoc.NotFoundError
	if err := repo.MarkDirty(ctx, uuid.New()); !errors.As(err, &notFound) {
		t.Fatalf("expected not found for unknown store, got %v", err)
	}
}
