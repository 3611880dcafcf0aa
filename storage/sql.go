package storage

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

// SQLBackend runs queries through gorm against Postgres or SQLite. Rows
// travel as maps so the Backend contract stays schema-agnostic.
type SQLBackend struct {
	db      *gorm.DB
	dialect dialect
	closers []func() error
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// Close releases the underlying connections
func (b *SQLBackend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Select returns the rows matching q
func (b *SQLBackend) Select(ctx context.Context, q *Query) ([]Row, error) {
	tx, err := b.selectTx(ctx, q)
	if err != nil {
		return nil, err
	}

	var maps []map[string]any
	if err := tx.Find(&maps).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = b.normalizeRow(m)
	}
	return out, nil
}

// Count returns the exact number of rows matching q, ignoring order and range
func (b *SQLBackend) Count(ctx context.Context, q *Query) (int, error) {
	tx, err := b.where(ctx, q)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Table, err)
	}
	return int(n), nil
}

// Insert writes one row
func (b *SQLBackend) Insert(ctx context.Context, table string, row Row) error {
	if err := validIdent(table); err != nil {
		return err
	}
	values, err := b.bindRow(row)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: empty insert", ErrInvalidQuery)
	}
	if err := b.db.WithContext(ctx).Table(table).Create(values).Error; err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Update sets columns on every row matching q
func (b *SQLBackend) Update(ctx context.Context, q *Query, set Row) (int, error) {
	values, err := b.bindRow(set)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: empty update", ErrInvalidQuery)
	}
	tx, err := b.where(ctx, q)
	if err != nil {
		return 0, err
	}

	res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("update %s: %w", q.Table, res.Error)
	}
	return int(res.RowsAffected), nil
}

// Delete removes every row matching q
func (b *SQLBackend) Delete(ctx context.Context, q *Query) (int, error) {
	tx, err := b.where(ctx, q)
	if err != nil {
		return 0, err
	}

	res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(map[string]any{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s: %w", q.Table, res.Error)
	}
	return int(res.RowsAffected), nil
}

// where scopes a gorm statement to q's table and predicates
func (b *SQLBackend) where(ctx context.Context, q *Query) (*gorm.DB, error) {
	if err := validIdent(q.Table); err != nil {
		return nil, err
	}
	tx := b.db.WithContext(ctx).Table(q.Table)
	for _, p := range q.Where {
		expr, args, err := b.predicate(p)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(expr, args...)
	}
	return tx, nil
}

// selectTx adds ordering and range to the scoped statement. NULLs sort
// last in both directions, matching the memory backend.
func (b *SQLBackend) selectTx(ctx context.Context, q *Query) (*gorm.DB, error) {
	tx, err := b.where(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			if err := validIdent(o.Column); err != nil {
				return nil, err
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms = append(terms, o.Column+" "+dir+" NULLS LAST")
		}
		tx = tx.Order(strings.Join(terms, ", "))
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx, nil
}

// predicate renders p as a gorm condition with ? placeholders. Slice
// arguments are expanded into value lists by gorm.
func (b *SQLBackend) predicate(p Predicate) (string, []any, error) {
	if p.Op == OpOr {
		if len(p.Any) == 0 {
			return "1 = 0", nil, nil
		}
		parts := make([]string, 0, len(p.Any))
		var args []any
		for _, sub := range p.Any {
			s, a, err := b.predicate(sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, s)
			args = append(args, a...)
		}
		return strings.Join(parts, " OR "), args, nil
	}

	if err := validIdent(p.Column); err != nil {
		return "", nil, err
	}
	col := p.Column
	like := "LIKE"
	if b.dialect == dialectPostgres {
		like = "ILIKE"
	}

	switch p.Op {
	case OpEq:
		if p.Value == nil {
			return col + " IS NULL", nil, nil
		}
		return col + " = ?", []any{b.bind(p.Value)}, nil
	case OpNeq:
		return col + " <> ?", []any{b.bind(p.Value)}, nil
	case OpIsNull:
		return col + " IS NULL", nil, nil
	case OpIContains:
		return col + " " + like + ` ? ESCAPE '\'`, []any{containsPattern(p.Value)}, nil
	case OpIn:
		if len(p.Values) == 0 {
			return "1 = 0", nil, nil
		}
		return col + " IN ?", []any{p.Values}, nil
	case OpNotIn:
		if len(p.Values) == 0 {
			return "1 = 1", nil, nil
		}
		return col + " NOT IN ?", []any{p.Values}, nil
	case OpOverlaps:
		if len(p.Values) == 0 {
			return "1 = 0", nil, nil
		}
		if b.dialect == dialectPostgres {
			return col + " && ?::text[]", []any{pgTextArray(toStrings(p.Values))}, nil
		}
		return "EXISTS (SELECT 1 FROM json_each(" + col + ") WHERE json_each.value IN ?)", []any{p.Values}, nil
	case OpAnyContains:
		if b.dialect == dialectPostgres {
			return "EXISTS (SELECT 1 FROM unnest(" + col + `) AS elem WHERE elem ILIKE ? ESCAPE '\')`, []any{containsPattern(p.Value)}, nil
		}
		return "EXISTS (SELECT 1 FROM json_each(" + col + `) WHERE json_each.value LIKE ? ESCAPE '\')`, []any{containsPattern(p.Value)}, nil
	}
	return "", nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, p.Op)
}

// bind wraps array values so gorm passes them as one parameter
func (b *SQLBackend) bind(v any) any {
	arr, ok := v.([]string)
	if !ok {
		return v
	}
	if b.dialect == dialectPostgres {
		return pgTextArray(arr)
	}
	return jsonArray(arr)
}

func (b *SQLBackend) bindRow(row Row) (map[string]any, error) {
	out := make(map[string]any, len(row))
	for col, v := range row {
		if err := validIdent(col); err != nil {
			return nil, err
		}
		out[col] = b.bind(v)
	}
	return out, nil
}

// normalizeRow turns driver array encodings back into []string
func (b *SQLBackend) normalizeRow(m map[string]any) Row {
	row := make(Row, len(m))
	for col, v := range m {
		if raw, ok := v.([]byte); ok {
			v = string(raw)
		}
		if arrayColumns[col] {
			v = b.decodeArray(v)
		}
		row[col] = v
	}
	return row
}

func (b *SQLBackend) decodeArray(v any) []string {
	var arr []string
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		return toStrings(val)
	case string:
		var err error
		if b.dialect == dialectPostgres {
			err = scanTextArray(val, &arr)
		} else {
			err = json.Unmarshal([]byte(val), &arr)
		}
		if err != nil {
			log.Debugf("[Storage] undecodable array value %q: %v", val, err)
			return []string{}
		}
	}
	if arr == nil {
		return []string{}
	}
	return arr
}

func containsPattern(v any) string {
	return "%" + EscapeLike(fmt.Sprint(v)) + "%"
}

// pgTextArray binds as a single text[] parameter. pgx encodes the returned
// []string natively.
type pgTextArray []string

func (a pgTextArray) Value() (driver.Value, error) {
	if a == nil {
		return []string{}, nil
	}
	return []string(a), nil
}

// jsonArray stores a string array as JSON text for backends without arrays
type jsonArray []string

func (a jsonArray) Value() (driver.Value, error) {
	return encodeArray(a), nil
}

func toStrings(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func encodeArray(arr []string) string {
	if arr == nil {
		arr = []string{}
	}
	b, _ := json.Marshal(arr)
	return string(b)
}
