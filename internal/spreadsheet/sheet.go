package spreadsheet

import (
	"context"
	"errors"
	"time"

	"github.com/ignatzorin/cfp-backend/internal/cache"
	"github.com/ignatzorin/cfp-backend/internal/metrics"
	"github.com/ignatzorin/cfp-backend/internal/models"
)

var (
	// ErrRowNotFound строки с таким added нет в листе.
	ErrRowNotFound = errors.New("spreadsheet: row not found")
	// ErrNotConfigured интеграция с таблицей не настроена.
	ErrNotConfigured = errors.New("spreadsheet: not configured")
)

const cachePrefix = "sheet:"

// ValuesAPI операции над значениями листа.
type ValuesAPI interface {
	ReadValues(ctx context.Context, sheet string) ([][]string, error)
	AppendValues(ctx context.Context, sheet string, rows [][]string) error
	DeleteRow(ctx context.Context, sheet string, index int) error
}

type snapshot struct {
	mapper *RowMapper
	rows   []models.Row
	empty  bool
}

// SessionSheet лист с сессиями: строки читаются через кэш, запись его сбрасывает.
type SessionSheet struct {
	api   ValuesAPI
	name  string
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionSheet(api ValuesAPI, name string, c *cache.Cache, ttl time.Duration) *SessionSheet {
	return &SessionSheet{api: api, name: name, cache: c, ttl: ttl}
}

func (s *SessionSheet) key() string {
	return cachePrefix + s.name
}

// Rows возвращает все строки листа, кроме заголовка.
func (s *SessionSheet) Rows(ctx context.Context) ([]models.Row, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Row, len(snap.rows))
	copy(out, snap.rows)
	return out, nil
}

func (s *SessionSheet) snapshot(ctx context.Context) (*snapshot, error) {
	v, hit, err := s.cache.GetOrSet(ctx, s.key(), s.ttl, func(ctx context.Context) (interface{}, error) {
		values, err := s.api.ReadValues(ctx, s.name)
		if err != nil {
			return nil, err
		}
		return buildSnapshot(values), nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.SheetCacheHits.Inc()
	}
	return v.(*snapshot), nil
}

func buildSnapshot(values [][]string) *snapshot {
	var header []string
	if len(values) > 0 {
		header = values[0]
	}
	mapper := NewRowMapper(header)

	rows := make([]models.Row, 0, len(values))
	for i := 1; i < len(values); i++ {
		if row, ok := mapper.FromValues(values[i]); ok {
			rows = append(rows, row)
		}
	}
	return &snapshot{mapper: mapper, rows: rows, empty: len(values) == 0}
}

// Append дописывает строки в порядке колонок текущего заголовка.
func (s *SessionSheet) Append(ctx context.Context, rows []models.Row) error {
	if len(rows) == 0 {
		return nil
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}

	values := make([][]string, 0, len(rows)+1)
	if snap.empty {
		// пустой лист: сначала заголовок
		values = append(values, snap.mapper.Header())
	}
	for _, row := range rows {
		values = append(values, snap.mapper.ToValues(row))
	}

	defer s.cache.InvalidateByPrefix(s.key())
	return s.api.AppendValues(ctx, s.name, values)
}

// Delete удаляет строку по added. Индекс ищется по свежему чтению, не из кэша.
func (s *SessionSheet) Delete(ctx context.Context, added int64) error {
	values, err := s.api.ReadValues(ctx, s.name)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return ErrRowNotFound
	}

	mapper := NewRowMapper(values[0])
	for i := 1; i < len(values); i++ {
		row, ok := mapper.FromValues(values[i])
		if ok && row.Added == added {
			defer s.cache.InvalidateByPrefix(s.key())
			return s.api.DeleteRow(ctx, s.name, i)
		}
	}
	return ErrRowNotFound
}

// Disabled заглушка для окружений без таблицы.
type Disabled struct{}

func (Disabled) Rows(ctx context.Context) ([]models.Row, error) { return nil, ErrNotConfigured }

func (Disabled) Append(ctx context.Context, rows []models.Row) error { return ErrNotConfigured }

func (Disabled) Delete(ctx context.Context, added int64) error { return ErrNotConfigured }
