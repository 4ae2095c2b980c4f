package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	return store
}

func TestLocalStorageRoundTrip(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	content := []byte("%PDF-1.7 hello")
	storedName := NewStoredName("report.pdf")

	path, err := store.Upload(ctx, storedName, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if path == "" {
		t.Fatal("Upload returned empty storage path")
	}

	if !store.Exists(ctx, storedName) {
		t.Fatalf("Exists(%q) = false after upload", storedName)
	}

	reader, err := store.Open(ctx, storedName)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading blob: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("blob bytes differ from uploaded bytes")
	}
}

func TestLocalStorageOpenMissing(t *testing.T) {
	store := newTestLocalStorage(t)

	_, err := store.Open(context.Background(), NewStoredName("ghost.pdf"))
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("Open error = %v, want ErrBlobNotFound", err)
	}
}

func TestLocalStorageDeleteIdempotent(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	storedName := NewStoredName("gone.pdf")
	if _, err := store.Upload(ctx, storedName, strings.NewReader("data")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := store.Delete(ctx, storedName); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if store.Exists(ctx, storedName) {
		t.Error("blob still exists after Delete")
	}

	// Deleting an absent blob is not an error.
	if err := store.Delete(ctx, storedName); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestNewStoredName(t *testing.T) {
	a := NewStoredName("Invoice 2024.PDF")
	b := NewStoredName("Invoice 2024.PDF")

	if a == b {
		t.Errorf("two generated names collide: %q", a)
	}
	if !strings.HasSuffix(a, ".pdf") {
		t.Errorf("stored name %q should end in lowercased .pdf", a)
	}
	if !strings.HasSuffix(NewStoredName("noextension"), ".pdf") {
		t.Error("missing extension should default to .pdf")
	}
}

func TestBlobPathSharding(t *testing.T) {
	name := "ab12cd.pdf"
	if got := blobPath(name); got != "ab/ab12cd.pdf" {
		t.Errorf("blobPath(%q) = %q, want ab/ab12cd.pdf", name, got)
	}

	// Names too short to shard stay unsharded instead of panicking.
	for _, short := range []string{"", "a"} {
		if got := blobPath(short); got != short {
			t.Errorf("blobPath(%q) = %q, want %q", short, got, short)
		}
	}
}
