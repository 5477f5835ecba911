package feed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cre_catalog/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const batchA = `[
  {"source_platform":"zillow","extraction_timestamp":"2024-05-10T09:00:00Z","listing_id_native":"z-1","raw_fields":{"address":"1 A St"}}
]`

const batchB = `[
  {"source_platform":"redfin","extraction_timestamp":"2024-05-10T10:00:00Z","listing_id_native":"r-1","raw_fields":{"address":"2 B St"}},
  {"source_platform":"realtor","extraction_timestamp":"2024-05-10T11:00:00Z","listing_id_native":"m-1","raw_fields":{"address":"3 C St"}}
]`

func TestLoadReadsFilesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	// Write out of order; load order must follow file names.
	writeFile(t, dir, "b.json", batchB)
	writeFile(t, dir, "a.json", batchA)
	writeFile(t, dir, "notes.txt", "ignore me")
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	listings, files, err := NewDir(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(files) != 2 || files[0] != "a.json" || files[1] != "b.json" {
		t.Fatalf("files = %v", files)
	}
	if len(listings) != 3 {
		t.Fatalf("got %d listings, want 3", len(listings))
	}
	if listings[0].NativeID != "z-1" || listings[1].NativeID != "r-1" || listings[2].NativeID != "m-1" {
		t.Fatalf("order = %s, %s, %s", listings[0].NativeID, listings[1].NativeID, listings[2].NativeID)
	}
	if listings[0].Fields["address"] != "1 A St" {
		t.Fatalf("fields = %+v", listings[0].Fields)
	}
	wantTS := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	if !listings[0].ExtractedAt.Equal(wantTS) {
		t.Fatalf("extracted = %v", listings[0].ExtractedAt)
	}
}

func TestLoadEmptyDir(t *testing.T) {
	listings, files, err := NewDir(t.TempDir()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(listings) != 0 || len(files) != 0 {
		t.Fatalf("got %d listings, %d files", len(listings), len(files))
	}
}

func TestLoadMissingDir(t *testing.T) {
	_, _, err := NewDir(filepath.Join(t.TempDir(), "absent")).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", "{not json")

	_, _, err := NewDir(dir).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Fatalf("err = %v, want file name in message", err)
	}
}

func TestLoadHonorsContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", batchA)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewDir(dir).Load(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWriteCatalog(t *testing.T) {
	out := filepath.Join(t.TempDir(), "snapshots", "catalog.json")
	props := []domain.Property{{
		PropertyID:     "PROP-000000",
		Data:           map[string]any{"address": "1 A St"},
		Classification: domain.ClassUsable,
		LastUpdated:    time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}}

	if err := WriteCatalog(out, props); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got []domain.Property
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].PropertyID != "PROP-000000" {
		t.Fatalf("round trip = %+v", got)
	}
}
