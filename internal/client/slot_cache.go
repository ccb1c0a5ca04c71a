package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"go.etcd.io/bbolt"
)

var timetablesBucket = []byte("Timetables")

// SlotCache локальная копия последних загруженных расписаний на bbolt
type SlotCache struct {
	db *bbolt.DB
}

// OpenSlotCache открывает (или создаёт) файл кэша
func OpenSlotCache(path string) (*SlotCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(timetablesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}

	return &SlotCache{db: db}, nil
}

func slotCacheKey(year model.CohortYear, weekNumber int) []byte {
	return []byte(fmt.Sprintf("%s/%02d", year, weekNumber))
}

// Put сохраняет расписание, заменяя прежнюю копию той же недели
func (c *SlotCache) Put(timetable *model.Timetable) error {
	data, err := json.Marshal(timetable)
	if err != nil {
		return fmt.Errorf("encode timetable: %w", err)
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		key := slotCacheKey(timetable.Header.Year, timetable.Header.WeekNumber)
		return tx.Bucket(timetablesBucket).Put(key, data)
	})
}

// LoadAll читает все сохранённые расписания
func (c *SlotCache) LoadAll() ([]*model.Timetable, error) {
	var out []*model.Timetable

	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(timetablesBucket).ForEach(func(k, v []byte) error {
			var timetable model.Timetable
			if err := json.Unmarshal(v, &timetable); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, &timetable)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SlotCache) Close() error {
	return c.db.Close()
}
