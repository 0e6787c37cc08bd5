package di_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-mapsync/internal/di"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/internal/runtimeconfig"
	"github.com/goliatone/go-mapsync/internal/stores"
)

func TestNewContainerDefaultsToMemory(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.DB() != nil {
		t.Fatal("expected no database in memory mode")
	}
	if container.MemoryRepository() == nil {
		t.Fatal("expected memory repository exposed")
	}
	if container.DocumentService() == nil || container.StoreService() == nil {
		t.Fatal("expected services wired")
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "orbit"
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestContainerSharesStoreMapInMemoryMode(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	ctx := context.Background()

	created, err := container.StoreService().Create(ctx, stores.CreateStoreRequest{Name: "Downtown"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	// the document engine must see the store the registry created
	if _, err := container.DocumentService().SaveDocument(ctx, mapdoc.SaveDocumentRequest{
		StoreID:  created.ID,
		Elements: []mapdoc.ElementInput{{Token: "pin-a", Kind: "pin"}},
	}); err != nil {
		t.Fatalf("save document: %v", err)
	}

	status, err := container.DocumentService().Status(ctx, created.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.ElementCount != 1 {
		t.Fatalf("expected 1 element got %d", status.ElementCount)
	}
}

func TestContainerServiceOverrides(t *testing.T) {
	repo := mapdoc.NewMemoryRepository()
	custom := mapdoc.NewService(repo, repo, repo)

	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithDocumentService(custom))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.DocumentService() == nil {
		t.Fatal("expected override respected")
	}
}
