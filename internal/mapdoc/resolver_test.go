package mapdoc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/google/uuid"
)

func seedStore(repo *mapdoc.MemoryRepository) uuid.UUID {
	storeID := uuid.New()
	repo.PutStore(&mapdoc.Store{ID: storeID, Name: "Downtown", Slug: "downtown"})
	return storeID
}

func mustCreate(t *testing.T, repo *mapdoc.MemoryRepository, storeID uuid.UUID, token string) *mapdoc.Element {
	t.Helper()
	created, err := repo.CreateElement(context.Background(), &mapdoc.Element{
		StoreID:  storeID,
		Kind:     "pin",
		Metadata: mapdoc.ElementMetadata{Token: token},
	})
	if err != nil {
		t.Fatalf("create element: %v", err)
	}
	return created
}

func TestResolvePrefersRowID(t *testing.T) {
	repo := mapdoc.NewMemoryRepository()
	storeID := seedStore(repo)
	created := mustCreate(t, repo, storeID, "pin-a")

	resolver := mapdoc.NewResolver(repo)
	id, err := resolver.Resolve(context.Background(), storeID, "1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != created.ID {
		t.Fatalf("expected id %d got %d", created.ID, id)
	}
}

func TestResolveFallsBackToToken(t *testing.T) {
	repo := mapdoc.NewMemoryRepository()
	storeID := seedStore(repo)
	created := mustCreate(t, repo, storeID, "pin-a")

	resolver := mapdoc.NewResolver(repo)
	id, err := resolver.Resolve(context.Background(), storeID, "pin-a")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != created.ID {
		t.Fatalf("expected id %d got %d", created.ID, id)
	}
}

func TestResolveNumericRefShadowsToken(t *testing.T) {
	repo := mapdoc.NewMemoryRepository()
	storeID := seedStore(repo)
	first := mustCreate(t, repo, storeID, "")
	// second element carries the first row's id as its token
	second := mustCreate(t, repo, storeID, "1")
	_ = second

	resolver := mapdoc.NewResolver(repo)
	id, err := resolver.Resolve(context.Background(), storeID, "1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != first.ID {
		t.Fatalf("expected row id %d to win over token match, got %d", first.ID, id)
	}
}

func TestResolveNumericTokenWhenNoSuchRow(t *testing.T) {
	repo := mapdoc.NewMemoryRepository()
	storeID := seedStore(repo)
	created := mustCreate(t, repo, storeID, "999")

	resolver := mapdoc.NewResolver(repo)
	id, err := resolver.Resolve(context.Background(), storeID, "999")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != created.ID {
		t.Fatalf("expected token match %d got %d", created.ID, id)
	}
}

func TestResolveAmbiguousTokenFails(t *testing.T) {
	repo := mapdoc.NewMemoryRepository()
	storeID := seedStore(repo)
	mustCreate(t, repo, storeID, "pin-a")
	mustCreate(t, repo, storeID, "pin-a")

	resolver := mapdoc.NewResolver(repo)
	if _, err := resolver.Resolve(context.Background(), storeID, "pin-a"); !errors.Is(err, mapdoc.ErrElementUnresolved) {
		t.Fatalf("expected unresolved error, got %v", err)
	}
}

func TestResolveUnknownRefFails(t *testing.T) {
	repo := mapdoc.NewMemoryRepository()
	storeID := seedStore(repo)
	mustCreate(t, repo, storeID, "pin-a")

	resolver := mapdoc.NewResolver(repo)
	for _, ref := range []string{"", "   ", "pin-x", "42", "-1"} {
		if _, err := resolver.Resolve(context.Background(), storeID, ref); !errors.Is(err, mapdoc.ErrElementUnresolved) {
			t.Fatalf("ref %q: expected unresolved error, got %v", ref, err)
		}
	}
}

func TestResolveScopedToStore(t *testing.T) {
	repo := mapdoc.NewMemoryRepository()
	storeID := seedStore(repo)
	otherStore := seedStore(repo)
	created := mustCreate(t, repo, storeID, "pin-a")

	resolver := mapdoc.NewResolver(repo)
	if _, err := resolver.Resolve(context.Background(), otherStore, "pin-a"); !errors.Is(err, mapdoc.ErrElementUnresolved) {
		t.Fatalf("expected unresolved in other store, got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), otherStore, created.Token()); !errors.Is(err, mapdoc.ErrElementUnresolved) {
		t.Fatalf("expected unresolved token in other store, got %v", err)
	}
}
