package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bilgisen/repurpose/internal/models"
)

// Memory is an in-process Repository for development and tests. Records are copied
// on the way in and out so callers never share state with the store.
type Memory struct {
	mu          sync.RWMutex
	content     map[string]*models.Content
	connections map[string]*models.SocialConnection
	posts       []*models.PostQueueEntry
	now         func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		content:     make(map[string]*models.Content),
		connections: make(map[string]*models.SocialConnection),
		now:         time.Now,
	}
}

func (m *Memory) Close() error {
	return nil
}

func cloneContent(c *models.Content) *models.Content {
	cp := *c
	if c.ScheduledFor != nil {
		t := *c.ScheduledFor
		cp.ScheduledFor = &t
	}
	if c.Platform != nil {
		p := *c.Platform
		cp.Platform = &p
	}
	return &cp
}

func (m *Memory) CreateContent(ctx context.Context, c *models.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = models.NewID()
	}
	now := m.now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	m.content[c.ID] = cloneContent(c)
	return nil
}

func (m *Memory) GetContent(ctx context.Context, id string) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.content[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneContent(c), nil
}

func (m *Memory) filter(keep func(*models.Content) bool, less func(a, b *models.Content) bool) []*models.Content {
	out := []*models.Content{}
	for _, c := range m.content {
		if keep(c) {
			out = append(out, cloneContent(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func newestFirst(a, b *models.Content) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func earliestScheduled(a, b *models.Content) bool {
	if a.ScheduledFor.Equal(*b.ScheduledFor) {
		return a.ID < b.ID
	}
	return a.ScheduledFor.Before(*b.ScheduledFor)
}

func (m *Memory) ListContent(ctx context.Context, page, pageSize int) ([]*models.Content, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.filter(func(*models.Content) bool { return true }, newestFirst)
	total := int64(len(all))

	start, ok := pageOffset(page, pageSize)
	if !ok || start >= len(all) {
		return []*models.Content{}, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *Memory) ListScheduled(ctx context.Context, from, to time.Time) ([]*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filter(func(c *models.Content) bool {
		return c.ScheduledFor != nil && !c.ScheduledFor.Before(from) && c.ScheduledFor.Before(to)
	}, earliestScheduled), nil
}

func (m *Memory) ListUnscheduled(ctx context.Context) ([]*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filter(func(c *models.Content) bool { return c.ScheduledFor == nil }, newestFirst), nil
}

func (m *Memory) ListDue(ctx context.Context, now time.Time) ([]*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filter(func(c *models.Content) bool {
		return c.Status == models.StatusScheduled && c.ScheduledFor != nil && !c.ScheduledFor.After(now)
	}, earliestScheduled), nil
}

func (m *Memory) UpdateContent(ctx context.Context, c *models.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.content[c.ID]
	if !ok {
		return ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = m.now().UTC()
	m.content[c.ID] = cloneContent(c)
	return nil
}

func (m *Memory) UpdateVariants(ctx context.Context, id string, variants map[string]json.RawMessage) (*models.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for name := range variants {
		if _, ok := models.VariantColumn(name); !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownVariant, name)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.content[id]
	if !ok {
		return nil, ErrNotFound
	}
	for name, raw := range variants {
		existing.SetVariant(name, raw)
	}
	if existing.Status == models.StatusDraft {
		existing.Status = models.StatusReady
	}
	existing.UpdatedAt = m.now().UTC()
	return cloneContent(existing), nil
}

func (m *Memory) MarkPublished(ctx context.Context, id string, scheduledFor time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.content[id]
	if !ok || existing.Status != models.StatusScheduled ||
		existing.ScheduledFor == nil || !existing.ScheduledFor.Equal(scheduledFor) {
		return false, nil
	}
	existing.Status = models.StatusPublished
	existing.UpdatedAt = m.now().UTC()
	return true, nil
}

func (m *Memory) DeleteContent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.content[id]; !ok {
		return ErrNotFound
	}
	delete(m.content, id)
	return nil
}

func (m *Memory) ListConnections(ctx context.Context) ([]*models.SocialConnection, error) {
	return m.connectionsWhere(ctx, func(*models.SocialConnection) bool { return true })
}

func (m *Memory) ActiveConnections(ctx context.Context, platform string) ([]*models.SocialConnection, error) {
	return m.connectionsWhere(ctx, func(s *models.SocialConnection) bool {
		return s.IsActive && s.Platform == platform && s.WebhookURL != ""
	})
}

func (m *Memory) connectionsWhere(ctx context.Context, keep func(*models.SocialConnection) bool) ([]*models.SocialConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*models.SocialConnection{}
	for _, s := range m.connections {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetConnection(ctx context.Context, id string) (*models.SocialConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.connections[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) CreateConnection(ctx context.Context, s *models.SocialConnection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = models.NewID()
	}
	now := m.now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	cp := *s
	m.connections[s.ID] = &cp
	return nil
}

func (m *Memory) UpdateConnection(ctx context.Context, s *models.SocialConnection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.connections[s.ID]
	if !ok {
		return ErrNotFound
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = m.now().UTC()
	cp := *s
	m.connections[s.ID] = &cp
	return nil
}

func (m *Memory) DeleteConnection(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.connections[id]; !ok {
		return ErrNotFound
	}
	delete(m.connections, id)
	return nil
}

func (m *Memory) CreatePostEntry(ctx context.Context, p *models.PostQueueEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = models.NewID()
	}
	p.CreatedAt = m.now().UTC()
	cp := *p
	m.posts = append(m.posts, &cp)
	return nil
}

func (m *Memory) ListPostEntries(ctx context.Context, contentID string) ([]*models.PostQueueEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*models.PostQueueEntry{}
	for _, p := range m.posts {
		if p.ContentID == contentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}
