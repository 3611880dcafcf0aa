package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryBackend keeps tables in process memory. It backs tests and
// DATABASE_URL=memory:// development runs.
type MemoryBackend struct {
	mu     sync.RWMutex
	tables map[string][]Row

	// Fail, when set, is returned by every call
	Fail error
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{tables: make(map[string][]Row)}
}

// Close is a no-op
func (m *MemoryBackend) Close() error { return nil }

// Select returns copies of the rows matching q
func (m *MemoryBackend) Select(ctx context.Context, q *Query) ([]Row, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}
	if err := validIdent(q.Table); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Row
	for _, row := range m.tables[q.Table] {
		ok, err := matchAll(row, q.Where)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, copyRow(row))
		}
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, o := range q.OrderBy {
				a, b := matched[i][o.Column], matched[j][o.Column]
				if (a == nil) != (b == nil) {
					// NULLs last in both directions
					return b == nil
				}
				c := compareValues(a, b)
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Offset >= len(matched) {
		return []Row{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Count returns the number of rows matching q
func (m *MemoryBackend) Count(ctx context.Context, q *Query) (int, error) {
	if m.Fail != nil {
		return 0, m.Fail
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, row := range m.tables[q.Table] {
		ok, err := matchAll(row, q.Where)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Insert appends one row
func (m *MemoryBackend) Insert(ctx context.Context, table string, row Row) error {
	if m.Fail != nil {
		return m.Fail
	}
	if err := validIdent(table); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := row["id"]; ok {
		for _, existing := range m.tables[table] {
			if existing["id"] == id {
				return fmt.Errorf("insert %s: duplicate id %v", table, id)
			}
		}
	}
	m.tables[table] = append(m.tables[table], copyRow(row))
	return nil
}

// Update sets columns on every row matching q
func (m *MemoryBackend) Update(ctx context.Context, q *Query, set Row) (int, error) {
	if m.Fail != nil {
		return 0, m.Fail
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, row := range m.tables[q.Table] {
		ok, err := matchAll(row, q.Where)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		for k, v := range set {
			row[k] = copyValue(v)
		}
		n++
	}
	return n, nil
}

// Delete removes every row matching q
func (m *MemoryBackend) Delete(ctx context.Context, q *Query) (int, error) {
	if m.Fail != nil {
		return 0, m.Fail
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tables[q.Table][:0]
	n := 0
	for _, row := range m.tables[q.Table] {
		ok, err := matchAll(row, q.Where)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
			continue
		}
		kept = append(kept, row)
	}
	m.tables[q.Table] = kept
	return n, nil
}

func matchAll(row Row, preds []Predicate) (bool, error) {
	for _, p := range preds {
		ok, err := match(row, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func match(row Row, p Predicate) (bool, error) {
	if p.Op == OpOr {
		for _, sub := range p.Any {
			ok, err := match(row, sub)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	if err := validIdent(p.Column); err != nil {
		return false, err
	}
	v := row[p.Column]

	switch p.Op {
	case OpEq:
		return equalValues(v, p.Value), nil
	case OpNeq:
		return v != nil && !equalValues(v, p.Value), nil
	case OpIsNull:
		return v == nil, nil
	case OpIContains:
		s, ok := v.(string)
		return ok && containsFold(s, fmt.Sprint(p.Value)), nil
	case OpIn:
		return inList(v, p.Values), nil
	case OpNotIn:
		return v != nil && !inList(v, p.Values), nil
	case OpOverlaps:
		for _, e := range stringsOf(v) {
			if inList(e, p.Values) {
				return true, nil
			}
		}
		return false, nil
	case OpAnyContains:
		for _, e := range stringsOf(v) {
			if containsFold(e, fmt.Sprint(p.Value)) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, p.Op)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func inList(v any, list []any) bool {
	for _, item := range list {
		if equalValues(v, item) {
			return true
		}
	}
	return false
}

func stringsOf(v any) []string {
	switch arr := v.(type) {
	case []string:
		return arr
	case []any:
		return toStrings(arr)
	}
	return nil
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// compareValues orders nil first, then by time, number or string
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case int:
		if bv, ok := b.(int); ok {
			return compareInts(int64(av), int64(bv))
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return compareInts(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	if arr, ok := v.([]string); ok {
		return append([]string(nil), arr...)
	}
	return v
}
