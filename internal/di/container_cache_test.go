package di

import (
	"testing"

	"github.com/goliatone/go-mapsync/internal/runtimeconfig"
)

func TestCacheFeatureBuildsDefaultService(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Cache = true

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.cacheService == nil {
		t.Fatal("expected a default cache service when the cache feature is on")
	}
	if container.keySerializer == nil {
		t.Fatal("expected a default key serializer when the cache feature is on")
	}
}

func TestCacheFeatureOffLeavesCacheUnbound(t *testing.T) {
	container, err := NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.cacheService != nil {
		t.Fatal("expected no cache service when the cache feature is off")
	}
}
