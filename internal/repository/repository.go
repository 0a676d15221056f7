package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bilgisen/repurpose/internal/config"
	"github.com/bilgisen/repurpose/internal/models"
)

// ErrNotFound is returned when a record with the given ID does not exist.
var ErrNotFound = errors.New("record not found")

// Repository persists the content library, social connections and the post queue.
type Repository interface {
	CreateContent(ctx context.Context, c *models.Content) error
	GetContent(ctx context.Context, id string) (*models.Content, error)
	// ListContent returns one page of records, newest first, and the total count.
	ListContent(ctx context.Context, page, pageSize int) ([]*models.Content, int64, error)
	// ListScheduled returns records scheduled in [from, to), earliest first.
	ListScheduled(ctx context.Context, from, to time.Time) ([]*models.Content, error)
	ListUnscheduled(ctx context.Context) ([]*models.Content, error)
	// ListDue returns scheduled records whose time is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]*models.Content, error)
	UpdateContent(ctx context.Context, c *models.Content) error
	// UpdateVariants stores the given variant documents and promotes a draft to
	// ready, leaving every other column as it is in the store.
	UpdateVariants(ctx context.Context, id string, variants map[string]json.RawMessage) (*models.Content, error)
	// MarkPublished moves a record to published only while it is still scheduled
	// for scheduledFor. It reports false when the record changed or is gone.
	MarkPublished(ctx context.Context, id string, scheduledFor time.Time) (bool, error)
	DeleteContent(ctx context.Context, id string) error

	ListConnections(ctx context.Context) ([]*models.SocialConnection, error)
	ActiveConnections(ctx context.Context, platform string) ([]*models.SocialConnection, error)
	GetConnection(ctx context.Context, id string) (*models.SocialConnection, error)
	CreateConnection(ctx context.Context, s *models.SocialConnection) error
	UpdateConnection(ctx context.Context, s *models.SocialConnection) error
	DeleteConnection(ctx context.Context, id string) error

	CreatePostEntry(ctx context.Context, p *models.PostQueueEntry) error
	ListPostEntries(ctx context.Context, contentID string) ([]*models.PostQueueEntry, error)

	Close() error
}

// New opens the repository selected by cfg.DBDriver.
func New(cfg *config.Config) (Repository, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return NewMemory(), nil
	case config.DriverPostgres, config.DriverSQLite:
		return OpenGorm(cfg.DBDriver, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// ErrUnknownVariant is returned by UpdateVariants for a name with no column.
var ErrUnknownVariant = errors.New("unknown variant")

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize > 100:
		pageSize = 100
	case pageSize <= 0:
		pageSize = 20
	}
	return page, pageSize
}

// pageOffset returns how many records precede page. ok is false when the offset
// does not fit in an int, which means the page is past any stored record.
func pageOffset(page, pageSize int) (offset int, ok bool) {
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}
