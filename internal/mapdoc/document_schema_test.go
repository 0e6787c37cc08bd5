package mapdoc_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-mapsync/internal/mapdoc"
)

func TestValidateDocumentPayloadAccepts(t *testing.T) {
	payload := []byte(`{
		"elements": [
			{"type": "pin", "x": 1, "y": 2, "width": 3, "height": 4, "metadata": {"token": "pin-a", "fill": "#f00"}},
			{"type": "zone", "x": 0, "y": 0, "width": 100, "height": 50, "zIndex": 2, "color": null}
		]
	}`)
	if err := mapdoc.ValidateDocumentPayload(payload); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidateDocumentPayloadAcceptsEmptyList(t *testing.T) {
	if err := mapdoc.ValidateDocumentPayload([]byte(`{"elements": []}`)); err != nil {
		t.Fatalf("expected empty list valid, got %v", err)
	}
}

func TestValidateDocumentPayloadRejectsMissingGeometry(t *testing.T) {
	payload := []byte(`{"elements": [{"type": "pin", "x": 1}]}`)
	err := mapdoc.ValidateDocumentPayload(payload)
	var invalid *mapdoc.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, mapdoc.ErrDocumentInvalid) {
		t.Fatalf("expected sentinel wrap, got %v", err)
	}
	if len(invalid.Issues) == 0 {
		t.Fatal("expected issues reported")
	}
}

func TestValidateDocumentPayloadRejectsNonListElements(t *testing.T) {
	payload := []byte(`{"elements": {"type": "pin"}}`)
	var invalid *mapdoc.ValidationError
	if err := mapdoc.ValidateDocumentPayload(payload); !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateDocumentPayloadRejectsMalformedJSON(t *testing.T) {
	var invalid *mapdoc.ValidationError
	if err := mapdoc.ValidateDocumentPayload([]byte(`{"elements": [`)); !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
