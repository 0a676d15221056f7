package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/repurpose/internal/config"
	"github.com/bilgisen/repurpose/internal/models"
)

// ErrNotFound is returned when no snapshot exists for an ID.
var ErrNotFound = errors.New("archived content not found")

// Archive keeps point-in-time JSON snapshots of content records. Snapshots are
// written under YYYY/MM/DD/<unixnano>_<id>.json; Get returns the newest one.
type Archive interface {
	Put(ctx context.Context, c *models.Content) error
	Get(ctx context.Context, id string) (*models.Content, error)
}

// New returns the archive selected by cfg.ArchiveBackend, or nil when archiving is off.
func New(ctx context.Context, cfg *config.Config) (Archive, error) {
	switch cfg.ArchiveBackend {
	case config.ArchiveNone, "":
		return nil, nil
	case config.ArchiveFile:
		return NewFileArchive(cfg.ArchivePath)
	case config.ArchiveR2:
		endpoint := cfg.R2Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
		}
		return NewR2Archive(ctx, R2Options{
			Endpoint:  endpoint,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
		})
	default:
		return nil, fmt.Errorf("unsupported archive backend %q", cfg.ArchiveBackend)
	}
}

// snapshotKey builds the slash-separated object key for c at time t.
func snapshotKey(c *models.Content, t time.Time) string {
	t = t.UTC()
	return path.Join(t.Format("2006/01/02"), fmt.Sprintf("%d_%s.json", t.UnixNano(), c.ID))
}

func isSnapshotOf(name, id string) bool {
	return strings.HasSuffix(name, "_"+id+".json")
}

// newer reports whether snapshot key a was written after b.
func newer(a, b string) bool {
	da, db := path.Dir(a), path.Dir(b)
	if da != db {
		return da > db
	}
	ua, _, _ := strings.Cut(path.Base(a), "_")
	ub, _, _ := strings.Cut(path.Base(b), "_")
	if len(ua) != len(ub) {
		return len(ua) > len(ub)
	}
	return ua > ub
}

// FileArchive stores snapshots on the local filesystem.
type FileArchive struct {
	basePath string
	mu       sync.RWMutex
	now      func() time.Time
}

func NewFileArchive(basePath string) (*FileArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileArchive{basePath: basePath, now: time.Now}, nil
}

// Put writes a snapshot of c.
func (a *FileArchive) Put(ctx context.Context, c *models.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	filePath := filepath.Join(a.basePath, filepath.FromSlash(snapshotKey(c, a.now())))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create date directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Get returns the newest snapshot for id.
func (a *FileArchive) Get(ctx context.Context, id string) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	var latest string
	err := filepath.WalkDir(a.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSnapshotOf(d.Name(), id) {
			return nil
		}
		rel, err := filepath.Rel(a.basePath, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if latest == "" || newer(rel, latest) {
			latest = rel
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the archive: %w", err)
	}
	if latest == "" {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(a.basePath, filepath.FromSlash(latest)))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", latest, err)
	}
	var c models.Content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &c, nil
}
