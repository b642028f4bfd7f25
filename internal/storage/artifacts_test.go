package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Shree2124/NGOStream/internal/domain"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestArtifactStoreSaveLoadCurrent(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore returned error: %v", err)
	}
	ctx := context.Background()

	first, err := store.Save(ctx, "donation-forecast", payload{Name: "first", Score: 1})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	store.now = func() time.Time { return first.CreatedAt.Add(time.Second) }
	second, err := store.Save(ctx, "donation-forecast", payload{Name: "second", Score: 2})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if first.Version == second.Version {
		t.Fatalf("expected distinct versions, got %s twice", first.Version)
	}

	current, err := store.Current(ctx, "donation-forecast")
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if current.Version != second.Version {
		t.Fatalf("Current = %s, want %s", current.Version, second.Version)
	}

	var got payload
	if err := store.Load(ctx, current, &got); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Name != "second" || got.Score != 2 {
		t.Fatalf("unexpected payload %#v", got)
	}

	var old payload
	if err := store.Load(ctx, first, &old); err != nil {
		t.Fatalf("Load of previous version returned error: %v", err)
	}
	if old.Name != "first" {
		t.Fatalf("previous version was overwritten: %#v", old)
	}

	if _, err := os.Stat(store.Path(second)); err != nil {
		t.Fatalf("artifact file missing at %s: %v", store.Path(second), err)
	}
}

func TestArtifactStoreCurrentMissing(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore returned error: %v", err)
	}
	_, err = store.Current(context.Background(), "feedback-sentiment")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestArtifactStoreRejectsBadKind(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore returned error: %v", err)
	}
	if _, err := store.Save(context.Background(), "../escape", payload{}); err == nil {
		t.Fatal("expected invalid kind to be rejected")
	}
}

func TestFileStoreWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	files, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	key, err := files.Write(context.Background(), "./models//a.json", []byte("{}"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if key != "models/a.json" {
		t.Fatalf("key = %q, want models/a.json", key)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "models"))
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.json" {
		t.Fatalf("unexpected directory contents %v", entries)
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"a/b.json":      "a/b.json",
		"/a/./b.json":   "a/b.json",
		`a\b.json`:      "a/b.json",
		"a/../b.json":   "b.json",
		"../etc/passwd": "",
		"..":            "",
		"  ":            "",
	}
	for in, want := range cases {
		got, err := sanitizeKey(in)
		if want == "" {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) = %q, want error", in, got)
			}
			continue
		}
		if err != nil || got != want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}
