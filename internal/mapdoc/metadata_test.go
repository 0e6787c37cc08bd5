package mapdoc_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-mapsync/internal/mapdoc"
)

func strPtr(s string) *string { return &s }

func TestMetadataMarshalFlattensKnownKeys(t *testing.T) {
	meta := mapdoc.ElementMetadata{
		Token: "pin-a",
		Location: &mapdoc.LocationRollup{
			Aisles:        []string{"A1", "B2"},
			Shelves:       []string{"S1", ""},
			PrimaryAisle:  strPtr("A1"),
			PrimaryShelf:  strPtr("S1"),
			LocationCount: 2,
		},
		Extra: map[string]any{"fill": "#ff0000"},
	}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded := map[string]any{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded["token"] != "pin-a" {
		t.Fatalf("expected token pin-a got %v", decoded["token"])
	}
	if decoded["fill"] != "#ff0000" {
		t.Fatalf("expected fill passthrough got %v", decoded["fill"])
	}
	if decoded["primaryAisle"] != "A1" {
		t.Fatalf("expected primaryAisle A1 got %v", decoded["primaryAisle"])
	}
	if decoded["locationCount"] != float64(2) {
		t.Fatalf("expected locationCount 2 got %v", decoded["locationCount"])
	}
}

func TestMetadataUnmarshalExtractsKnownKeys(t *testing.T) {
	payload := []byte(`{"token":"pin-a","aisles":["A1"],"shelves":["S1"],"primaryAisle":"A1","primaryShelf":"S1","locationCount":1,"fill":"#00ff00","label":"Milk"}`)

	meta := mapdoc.ElementMetadata{}
	if err := json.Unmarshal(payload, &meta); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if meta.Token != "pin-a" {
		t.Fatalf("expected token pin-a got %q", meta.Token)
	}
	if meta.Location == nil || meta.Location.LocationCount != 1 {
		t.Fatalf("expected location rollup, got %+v", meta.Location)
	}
	if meta.Extra["fill"] != "#00ff00" || meta.Extra["label"] != "Milk" {
		t.Fatalf("expected freeform keys retained, got %+v", meta.Extra)
	}
	if _, ok := meta.Extra["aisles"]; ok {
		t.Fatal("aisles should not leak into Extra")
	}
}

func TestMetadataMergeKeepsAbsentKeys(t *testing.T) {
	stored := mapdoc.ElementMetadata{
		Token: "pin-a",
		Extra: map[string]any{"fill": "#ff0000", "label": "Milk"},
	}

	merged := stored.Merge(mapdoc.ElementMetadata{
		Extra: map[string]any{"fill": "#0000ff"},
	})

	if merged.Token != "pin-a" {
		t.Fatalf("expected token retained, got %q", merged.Token)
	}
	if merged.Extra["fill"] != "#0000ff" {
		t.Fatalf("expected fill overwritten, got %v", merged.Extra["fill"])
	}
	if merged.Extra["label"] != "Milk" {
		t.Fatalf("expected label retained, got %v", merged.Extra["label"])
	}
}

func TestMetadataMergeDoesNotMutateReceiver(t *testing.T) {
	stored := mapdoc.ElementMetadata{Extra: map[string]any{"fill": "#ff0000"}}
	_ = stored.Merge(mapdoc.ElementMetadata{Extra: map[string]any{"fill": "#0000ff"}})

	if stored.Extra["fill"] != "#ff0000" {
		t.Fatalf("merge mutated receiver: %v", stored.Extra["fill"])
	}
}

func TestBuildLocationRollupSortsAndDedupes(t *testing.T) {
	products := []*mapdoc.Product{
		{ID: 1, Aisle: strPtr("B2"), Shelf: strPtr("S3")},
		{ID: 2, Aisle: strPtr("A1"), Shelf: strPtr("S1")},
		{ID: 3, Aisle: strPtr("A1"), Shelf: strPtr("S1")},
		{ID: 4, Aisle: nil, Shelf: strPtr("S9")},
	}

	rollup := mapdoc.BuildLocationRollup(products)
	if rollup == nil {
		t.Fatal("expected rollup")
	}
	if rollup.LocationCount != 2 {
		t.Fatalf("expected 2 distinct locations got %d", rollup.LocationCount)
	}
	if rollup.Aisles[0] != "A1" || rollup.Aisles[1] != "B2" {
		t.Fatalf("expected aisle-sorted order, got %v", rollup.Aisles)
	}
	if rollup.PrimaryAisle == nil || *rollup.PrimaryAisle != "A1" {
		t.Fatalf("expected primary aisle A1 got %v", rollup.PrimaryAisle)
	}
	if rollup.PrimaryShelf == nil || *rollup.PrimaryShelf != "S1" {
		t.Fatalf("expected primary shelf S1 got %v", rollup.PrimaryShelf)
	}
}

func TestBuildLocationRollupNilWithoutLocations(t *testing.T) {
	products := []*mapdoc.Product{
		{ID: 1},
		{ID: 2, Shelf: strPtr("S1")},
	}
	if rollup := mapdoc.BuildLocationRollup(products); rollup != nil {
		t.Fatalf("expected nil rollup, got %+v", rollup)
	}
}

func TestBuildLocationRollupPrimaryShelfNullWhenEmpty(t *testing.T) {
	products := []*mapdoc.Product{
		{ID: 1, Aisle: strPtr("A1")},
	}
	rollup := mapdoc.BuildLocationRollup(products)
	if rollup == nil {
		t.Fatal("expected rollup")
	}
	if rollup.PrimaryShelf != nil {
		t.Fatalf("expected nil primary shelf, got %q", *rollup.PrimaryShelf)
	}
}
