package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bilgisen/repurpose/internal/models"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

var ErrInvalidMonth = errors.New("month must be formatted as YYYY-MM")

// Day is one calendar cell.
type Day struct {
	Date  string            `json:"date"`
	Items []*models.Content `json:"items"`
}

// MonthView is a month of scheduled content plus everything not yet scheduled.
type MonthView struct {
	Month       string            `json:"month"`
	Days        []Day             `json:"days"`
	Unscheduled []*models.Content `json:"unscheduled"`
}

// ParseMonth parses YYYY-MM. An empty value means the month containing now.
func ParseMonth(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		now = now.UTC()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	m, err := time.Parse(monthLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, raw)
	}
	return m, nil
}

// Bounds returns the half-open UTC range [first day, first day of next month).
func Bounds(month time.Time) (time.Time, time.Time) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// Build buckets scheduled records by UTC day. Every day of the month is present, in
// order, and records outside the month are ignored.
func Build(month time.Time, scheduled, unscheduled []*models.Content) MonthView {
	from, to := Bounds(month)

	index := make(map[string]int)
	var days []Day
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		index[key] = len(days)
		days = append(days, Day{Date: key, Items: []*models.Content{}})
	}

	for _, c := range scheduled {
		if c.ScheduledFor == nil {
			continue
		}
		i, ok := index[c.ScheduledFor.UTC().Format(dayLayout)]
		if !ok {
			continue
		}
		days[i].Items = append(days[i].Items, c)
	}
	for i := range days {
		items := days[i].Items
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].ScheduledFor.Before(*items[b].ScheduledFor)
		})
	}

	if unscheduled == nil {
		unscheduled = []*models.Content{}
	}
	return MonthView{
		Month:       from.Format(monthLayout),
		Days:        days,
		Unscheduled: unscheduled,
	}
}
