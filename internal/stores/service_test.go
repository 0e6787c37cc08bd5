package stores_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/internal/stores"
	"github.com/google/uuid"
)

func newRegistry(repo stores.Repository) stores.Service {
	return stores.NewService(repo, stores.WithClock(func() time.Time {
		return time.Unix(1700000000, 0).UTC()
	}))
}

func TestStoreCreateDerivesSlugFromName(t *testing.T) {
	repo := stores.NewMemoryStoreRepository()
	svc := newRegistry(repo)

	created, err := svc.Create(context.Background(), stores.CreateStoreRequest{
		Name: "Downtown Market",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "downtown-market" {
		t.Fatalf("expected derived slug, got %q", created.Slug)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if !created.DraftChanges {
		t.Fatal("new stores start as drafts")
	}
	if created.PublishedAt != nil {
		t.Fatal("new stores carry no publish stamp")
	}
}

func TestStoreCreateNormalizesExplicitSlug(t *testing.T) {
	repo := stores.NewMemoryStoreRepository()
	svc := newRegistry(repo)

	created, err := svc.Create(context.Background(), stores.CreateStoreRequest{
		Name: "Downtown",
		Slug: "  Downtown Market  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "downtown-market" {
		t.Fatalf("expected normalized slug, got %q", created.Slug)
	}
}

func TestStoreCreateRejectsDuplicateSlug(t *testing.T) {
	repo := stores.NewMemoryStoreRepository()
	svc := newRegistry(repo)

	if _, err := svc.Create(context.Background(), stores.CreateStoreRequest{Name: "Downtown"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), stores.CreateStoreRequest{Name: "Downtown"}); !errors.Is(err, stores.ErrSlugExists) {
		t.Fatalf("expected slug conflict, got %v", err)
	}
}

func TestStoreCreateRequiresName(t *testing.T) {
	repo := stores.NewMemoryStoreRepository()
	svc := newRegistry(repo)

	if _, err := svc.Create(context.Background(), stores.CreateStoreRequest{Name: "   "}); !errors.Is(err, stores.ErrNameRequired) {
		t.Fatalf("expected name error, got %v", err)
	}
}

func TestStoreGetBySlug(t *testing.T) {
	repo := stores.NewMemoryStoreRepository()
	svc := newRegistry(repo)

	created, err := svc.Create(context.Background(), stores.CreateStoreRequest{Name: "Downtown"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fetched, err := svc.GetBySlug(context.Background(), "Downtown")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("expected store %s got %s", created.ID, fetched.ID)
	}

	var notFound *mapdoc.NotFoundError
	if _, err := svc.GetBySlug(context.Background(), "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	repo := stores.NewMemoryStoreRepository()
	svc := newRegistry(repo)

	for _, name := range []string{"Downtown", "Uptown"} {
		if _, err := svc.Create(context.Background(), stores.CreateStoreRequest{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	listed, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 stores got %d", len(listed))
	}
}
