package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/bilgisen/repurpose/internal/models"
)

func scheduledAt(id string, at time.Time) *models.Content {
	c := &models.Content{ID: id}
	c.Schedule(at, "tiktok")
	return c
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"2026-02", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), false},
		{"2026-13", time.Time{}, true},
		{"2026/02", time.Time{}, true},
		{"february", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseMonth(tt.raw, now)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidMonth) {
				t.Errorf("ParseMonth(%q) error = %v, want ErrInvalidMonth", tt.raw, err)
			}
			continue
		}
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("ParseMonth(%q) = %v, %v, want %v", tt.raw, got, err, tt.want)
		}
	}
}

func TestBuildEveryDayPresent(t *testing.T) {
	for _, tt := range []struct {
		month string
		days  int
	}{
		{"2026-02", 28},
		{"2028-02", 29},
		{"2026-10", 31},
		{"2026-11", 30},
	} {
		m, _ := ParseMonth(tt.month, time.Now())
		v := Build(m, nil, nil)
		if len(v.Days) != tt.days {
			t.Errorf("%s: got %d days, want %d", tt.month, len(v.Days), tt.days)
		}
		if v.Days[0].Date != tt.month+"-01" {
			t.Errorf("%s: first day %s", tt.month, v.Days[0].Date)
		}
		if v.Unscheduled == nil || v.Days[0].Items == nil {
			t.Errorf("%s: expected empty slices, not nil", tt.month)
		}
	}
}

func TestBuildBucketsByUTCDay(t *testing.T) {
	m, _ := ParseMonth("2026-10", time.Now())
	ist := time.FixedZone("IST", 3*3600)

	late := scheduledAt("late", time.Date(2026, 10, 3, 18, 0, 0, 0, time.UTC))
	early := scheduledAt("early", time.Date(2026, 10, 3, 6, 0, 0, 0, time.UTC))
	// 01:30 local on the 4th is still the 3rd in UTC
	shifted := scheduledAt("shifted", time.Date(2026, 10, 4, 1, 30, 0, 0, ist))
	outside := scheduledAt("outside", time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))
	loose := &models.Content{ID: "loose"}

	v := Build(m, []*models.Content{late, shifted, early, outside}, []*models.Content{loose})

	if v.Month != "2026-10" {
		t.Errorf("Month = %s", v.Month)
	}
	third := v.Days[2]
	if third.Date != "2026-10-03" {
		t.Fatalf("unexpected day %s", third.Date)
	}
	var ids []string
	for _, c := range third.Items {
		ids = append(ids, c.ID)
	}
	if len(ids) != 3 || ids[0] != "early" || ids[1] != "late" || ids[2] != "shifted" {
		t.Errorf("unexpected order %v", ids)
	}
	for _, d := range v.Days {
		for _, c := range d.Items {
			if c.ID == "outside" {
				t.Error("record from the next month leaked into the view")
			}
		}
	}
	if len(v.Unscheduled) != 1 || v.Unscheduled[0].ID != "loose" {
		t.Errorf("unexpected unscheduled list %v", v.Unscheduled)
	}
}
