package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bilgisen/repurpose/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// GormRepository stores records in Postgres or SQLite.
type GormRepository struct {
	db *gorm.DB
}

// OpenGorm connects with driver ("postgres" or "sqlite") and migrates the schema.
func OpenGorm(driver, dsn string) (*GormRepository, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := db.AutoMigrate(&models.Content{}, &models.SocialConnection{}, &models.PostQueueEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &GormRepository{db: db}, nil
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *GormRepository) CreateContent(ctx context.Context, c *models.Content) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

func (r *GormRepository) GetContent(ctx context.Context, id string) (*models.Content, error) {
	var c models.Content
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *GormRepository) ListContent(ctx context.Context, page, pageSize int) ([]*models.Content, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Content{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count content: %w", err)
	}

	items := []*models.Content{}
	offset, ok := pageOffset(page, pageSize)
	if !ok {
		return items, total, nil
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list content: %w", err)
	}
	return items, total, nil
}

func (r *GormRepository) ListScheduled(ctx context.Context, from, to time.Time) ([]*models.Content, error) {
	var items []*models.Content
	err := r.db.WithContext(ctx).
		Where("scheduled_for IS NOT NULL AND scheduled_for >= ? AND scheduled_for < ?", from.UTC(), to.UTC()).
		Order("scheduled_for ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled content: %w", err)
	}
	return items, nil
}

func (r *GormRepository) ListUnscheduled(ctx context.Context) ([]*models.Content, error) {
	var items []*models.Content
	err := r.db.WithContext(ctx).
		Where("scheduled_for IS NULL").
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unscheduled content: %w", err)
	}
	return items, nil
}

func (r *GormRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Content, error) {
	var items []*models.Content
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?", models.StatusScheduled, now.UTC()).
		Order("scheduled_for ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due content: %w", err)
	}
	return items, nil
}

func (r *GormRepository) UpdateContent(ctx context.Context, c *models.Content) error {
	res := r.db.WithContext(ctx).
		Model(&models.Content{}).
		Where("id = ?", c.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(c)
	if res.Error != nil {
		return fmt.Errorf("failed to update content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) UpdateVariants(ctx context.Context, id string, variants map[string]json.RawMessage) (*models.Content, error) {
	cols := make(map[string]any, len(variants)+1)
	for name, raw := range variants {
		col, ok := models.VariantColumn(name)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownVariant, name)
		}
		cols[col] = datatypes.JSON(raw)
	}
	cols["status"] = gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", models.StatusDraft, models.StatusReady)

	var out models.Content
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Content{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return fmt.Errorf("failed to update variants: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (r *GormRepository) MarkPublished(ctx context.Context, id string, scheduledFor time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Content{}).
		Where("id = ? AND status = ? AND scheduled_for = ?", id, models.StatusScheduled, scheduledFor.UTC()).
		Update("status", models.StatusPublished)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark content published: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) DeleteContent(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Content{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) ListConnections(ctx context.Context) ([]*models.SocialConnection, error) {
	var items []*models.SocialConnection
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return items, nil
}

func (r *GormRepository) ActiveConnections(ctx context.Context, platform string) ([]*models.SocialConnection, error) {
	var items []*models.SocialConnection
	err := r.db.WithContext(ctx).
		Where("platform = ? AND is_active = ? AND webhook_url <> ''", platform, true).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active connections: %w", err)
	}
	return items, nil
}

func (r *GormRepository) GetConnection(ctx context.Context, id string) (*models.SocialConnection, error) {
	var s models.SocialConnection
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *GormRepository) CreateConnection(ctx context.Context, s *models.SocialConnection) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

func (r *GormRepository) UpdateConnection(ctx context.Context, s *models.SocialConnection) error {
	res := r.db.WithContext(ctx).
		Model(&models.SocialConnection{}).
		Where("id = ?", s.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(s)
	if res.Error != nil {
		return fmt.Errorf("failed to update connection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) DeleteConnection(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.SocialConnection{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete connection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) CreatePostEntry(ctx context.Context, p *models.PostQueueEntry) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to record post: %w", err)
	}
	return nil
}

func (r *GormRepository) ListPostEntries(ctx context.Context, contentID string) ([]*models.PostQueueEntry, error) {
	var items []*models.PostQueueEntry
	err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return items, nil
}
