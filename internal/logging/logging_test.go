package logging_test

import (
	"testing"

	"github.com/goliatone/go-mapsync/internal/logging"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
)

type recordingLogger struct {
	interfaces.Logger
	fields map[string]any
}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{Logger: r.Logger, fields: merged}
}

type recordingProvider struct {
	names []string
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return &recordingLogger{Logger: logging.NoOp(), fields: map[string]any{}}
}

func TestModuleLoggerWithoutProviderIsSafe(t *testing.T) {
	logger := logging.ModuleLogger(nil, "mapsync.mapdoc")
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("works", "key", "value")
}

func TestModuleLoggerScopesByName(t *testing.T) {
	provider := &recordingProvider{}

	logging.DocumentLogger(provider)
	logging.StoresLogger(provider)

	if len(provider.names) != 2 {
		t.Fatalf("expected 2 lookups got %d", len(provider.names))
	}
	if provider.names[0] != "mapsync.mapdoc" || provider.names[1] != "mapsync.stores" {
		t.Fatalf("unexpected logger names: %v", provider.names)
	}
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	provider := &recordingProvider{}
	logger := logging.ModuleLogger(provider, "mapsync.custom")

	rec, ok := logger.(*recordingLogger)
	if !ok {
		t.Fatalf("expected recording logger, got %T", logger)
	}
	if rec.fields["module"] != "mapsync.custom" {
		t.Fatalf("expected module field, got %v", rec.fields)
	}
}

func TestWithFieldsEmptyMapIsPassthrough(t *testing.T) {
	base := logging.NoOp()
	if got := logging.WithFields(base, nil); got != base {
		t.Fatal("expected same logger for empty fields")
	}
}
