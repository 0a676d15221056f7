package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bilgisen/repurpose/internal/config"
	"github.com/bilgisen/repurpose/internal/models"
)

func sample(id, topic string) *models.Content {
	return &models.Content{
		ID:             id,
		Topic:          topic,
		ContentType:    "video",
		OriginalScript: "script",
		Status:         models.StatusReady,
	}
}

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2026, 3, 7, 15, 4, 5, 0, time.FixedZone("x", 3*3600))
	got := snapshotKey(sample("abc", "t"), at)
	want := fmt.Sprintf("2026/03/07/%d_abc.json", at.UnixNano())
	if got != want {
		t.Fatalf("snapshotKey = %q, want %q", got, want)
	}
}

func TestNewer(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2026/03/08/1_x.json", "2026/03/07/9_x.json", true},
		{"2026/03/07/10_x.json", "2026/03/07/9_x.json", true},
		{"2026/03/07/9_x.json", "2026/03/07/10_x.json", false},
		{"2025/12/31/9_x.json", "2026/01/01/1_x.json", false},
		{"2026/03/07/1772895845300000000_x.json", "2026/03/07/1772895845000000000_x.json", true},
	}
	for _, tt := range tests {
		if got := newer(tt.a, tt.b); got != tt.want {
			t.Errorf("newer(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFileArchive(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileArchive(dir)
	if err != nil {
		t.Fatalf("NewFileArchive: %v", err)
	}
	ctx := context.Background()

	clock := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }

	if err := a.Put(ctx, sample("id-1", "first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	clock = clock.Add(26 * time.Hour)
	if err := a.Put(ctx, sample("id-1", "second")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := a.Put(ctx, sample("id-2", "other")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "2026", "10", "01")); err != nil {
		t.Errorf("expected dated directory: %v", err)
	}

	got, err := a.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Topic != "second" {
		t.Errorf("expected newest snapshot, got %q", got.Topic)
	}

	if _, err := a.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileArchiveSameSecond(t *testing.T) {
	a, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive: %v", err)
	}
	ctx := context.Background()

	clock := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }

	if err := a.Put(ctx, sample("id-1", "saved")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	clock = clock.Add(300 * time.Millisecond)
	if err := a.Put(ctx, sample("id-1", "scheduled")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(a.basePath, "2026", "10", "01"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(entries))
	}

	got, err := a.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Topic != "scheduled" {
		t.Errorf("expected newest snapshot, got %q", got.Topic)
	}
}

func TestFileArchiveCanceledContext(t *testing.T) {
	a, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Put(ctx, sample("id", "t")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewDisabled(t *testing.T) {
	a, err := New(context.Background(), &config.Config{ArchiveBackend: config.ArchiveNone})
	if err != nil || a != nil {
		t.Fatalf("expected nil archive, got %v, %v", a, err)
	}
	if _, err := New(context.Background(), &config.Config{ArchiveBackend: "tape"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

// fakeBucket is a path-style S3 endpoint that keeps objects in memory.
type fakeBucket struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := "/" + f.bucket
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, "no such bucket", http.StatusNotFound)
		return
	}
	key := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, prefix), "/")

	switch {
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && key == "":
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
		sb.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
		fmt.Fprintf(&sb, "<Name>%s</Name><KeyCount>%d</KeyCount><IsTruncated>false</IsTruncated>", f.bucket, len(keys))
		for _, k := range keys {
			fmt.Fprintf(&sb, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", k, len(f.objects[k]))
		}
		sb.WriteString(`</ListBucketResult>`)
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, sb.String())
	case r.Method == http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestR2Archive(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))

	fake := &fakeBucket{bucket: "archive", objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	a, err := NewR2Archive(ctx, R2Options{
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "archive",
	})
	if err != nil {
		t.Fatalf("NewR2Archive: %v", err)
	}
	clock := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }

	if err := a.Put(ctx, sample("id-1", "first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	clock = clock.Add(time.Minute)
	if err := a.Put(ctx, sample("id-1", "second")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	wantKey := fmt.Sprintf("2026/10/01/%d_id-1.json", clock.UnixNano())
	if _, ok := fake.objects[wantKey]; !ok {
		t.Fatalf("expected object %s, have %v", wantKey, fake.objects)
	}

	got, err := a.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Topic != "second" {
		t.Errorf("expected newest snapshot, got %q", got.Topic)
	}

	if _, err := a.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
