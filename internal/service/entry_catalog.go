package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/source"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const catalogFetchTimeout = 30 * time.Second

type cachedEntries struct {
	entries   []model.TimetableEntry
	fetchedAt time.Time
}

// entryCatalog перечень опубликованных недель по потокам с TTL кэшем в памяти
type entryCatalog struct {
	provider source.Provider
	ttl      time.Duration
	clock    func() time.Time
	logger   *zap.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	byYear map[model.CohortYear]cachedEntries
}

func newEntryCatalog(provider source.Provider, ttl time.Duration, clock func() time.Time, logger *zap.Logger) *entryCatalog {
	return &entryCatalog{
		provider: provider,
		ttl:      ttl,
		clock:    clock,
		logger:   logger,
		byYear:   make(map[model.CohortYear]cachedEntries),
	}
}

// list возвращает недели потока по возрастанию номера, без дубликатов
func (c *entryCatalog) list(ctx context.Context, year model.CohortYear) ([]model.TimetableEntry, error) {
	if cached, ok := c.fresh(year); ok {
		return cached, nil
	}

	flight := c.group.DoChan(string(year), func() (interface{}, error) {
		listCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogFetchTimeout)
		defer cancel()

		raw, err := c.provider.Entries(listCtx, year)
		if err != nil {
			if errors.Is(err, model.ErrSourceUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", model.ErrSourceUnavailable, err)
		}

		entries := c.normalize(year, raw)
		if c.ttl > 0 {
			c.mu.Lock()
			c.byYear[year] = cachedEntries{entries: entries, fetchedAt: c.clock()}
			c.mu.Unlock()
		}
		return entries, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneEntries(res.Val.([]model.TimetableEntry)), nil
	}
}

func (c *entryCatalog) fresh(year model.CohortYear) ([]model.TimetableEntry, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.byYear[year]
	if !ok || c.clock().Sub(cached.fetchedAt) >= c.ttl {
		return nil, false
	}
	return cloneEntries(cached.entries), true
}

func (c *entryCatalog) normalize(year model.CohortYear, raw []model.TimetableEntry) []model.TimetableEntry {
	entries := make([]model.TimetableEntry, 0, len(raw))
	seen := make(map[int]bool, len(raw))

	for _, entry := range raw {
		if !model.ValidWeekNumber(entry.WeekNumber) {
			c.logger.Warn("Skipping entry with invalid week number",
				zap.String("year", year.String()),
				zap.Int("week_number", entry.WeekNumber))
			continue
		}
		if seen[entry.WeekNumber] {
			continue
		}
		seen[entry.WeekNumber] = true
		entry.Year = year
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WeekNumber < entries[j].WeekNumber
	})
	return entries
}

func cloneEntries(entries []model.TimetableEntry) []model.TimetableEntry {
	out := make([]model.TimetableEntry, len(entries))
	copy(out, entries)
	return out
}
