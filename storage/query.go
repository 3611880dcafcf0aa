package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Table names
const (
	TableJobs          = "jobs"
	TableJobClicks     = "job_clicks"
	TableSearchHistory = "search_history"
	TableImportedJobs  = "imported_jobs"
)

// Row is one record on the backend wire, keyed by snake_case column
type Row map[string]any

// Op is a predicate operator
type Op string

// Predicate operators
const (
	OpEq          Op = "eq"
	OpNeq         Op = "neq"
	OpIContains   Op = "icontains"    // case-insensitive substring
	OpIn          Op = "in"           // value in list
	OpNotIn       Op = "not_in"       // value not in list
	OpOverlaps    Op = "overlaps"     // array column shares an element with list
	OpAnyContains Op = "any_contains" // some array element contains substring, case-insensitive
	OpIsNull      Op = "is_null"
	OpOr          Op = "or" // any of Any holds
)

// Predicate is one condition of a query
type Predicate struct {
	Column string
	Op     Op
	Value  any
	Values []any
	Any    []Predicate
}

// Order is one ORDER BY term
type Order struct {
	Column string
	Desc   bool
}

// Query describes a select/count/update/delete against one table.
// Where predicates are ANDed. Limit 0 means no limit.
type Query struct {
	Table   string
	Where   []Predicate
	OrderBy []Order
	Offset  int
	Limit   int
}

// ErrInvalidQuery is returned when a query cannot be compiled
var ErrInvalidQuery = errors.New("invalid query")

// Backend is the generic data client every service talks to
type Backend interface {
	Select(ctx context.Context, q *Query) ([]Row, error)
	Count(ctx context.Context, q *Query) (int, error)
	Insert(ctx context.Context, table string, row Row) error
	Update(ctx context.Context, q *Query, set Row) (int, error)
	Delete(ctx context.Context, q *Query) (int, error)
	Close() error
}

// From starts a query on table
func From(table string) *Query {
	return &Query{Table: table}
}

// Eq adds column = value
func (q *Query) Eq(column string, value any) *Query {
	q.Where = append(q.Where, Eq(column, value))
	return q
}

// Neq adds column <> value
func (q *Query) Neq(column string, value any) *Query {
	q.Where = append(q.Where, Predicate{Column: column, Op: OpNeq, Value: value})
	return q
}

// IContains adds a case-insensitive substring match
func (q *Query) IContains(column, substr string) *Query {
	q.Where = append(q.Where, IContains(column, substr))
	return q
}

// In adds column IN values. An empty list matches nothing.
func (q *Query) In(column string, values ...any) *Query {
	q.Where = append(q.Where, Predicate{Column: column, Op: OpIn, Values: values})
	return q
}

// NotIn adds column NOT IN values. An empty list is no constraint.
func (q *Query) NotIn(column string, values ...any) *Query {
	if len(values) == 0 {
		return q
	}
	q.Where = append(q.Where, Predicate{Column: column, Op: OpNotIn, Values: values})
	return q
}

// Overlaps matches rows whose array column shares an element with values
func (q *Query) Overlaps(column string, values []string) *Query {
	q.Where = append(q.Where, Predicate{Column: column, Op: OpOverlaps, Values: toAny(values)})
	return q
}

// AnyContains matches rows where some element of an array column contains substr
func (q *Query) AnyContains(column, substr string) *Query {
	q.Where = append(q.Where, Predicate{Column: column, Op: OpAnyContains, Value: substr})
	return q
}

// IsNull adds column IS NULL
func (q *Query) IsNull(column string) *Query {
	q.Where = append(q.Where, Predicate{Column: column, Op: OpIsNull})
	return q
}

// Or adds a disjunction of preds
func (q *Query) Or(preds ...Predicate) *Query {
	q.Where = append(q.Where, Predicate{Op: OpOr, Any: preds})
	return q
}

// Order appends an ORDER BY term
func (q *Query) Order(column string, desc bool) *Query {
	q.OrderBy = append(q.OrderBy, Order{Column: column, Desc: desc})
	return q
}

// Range selects rows from..to, both inclusive and zero-based
func (q *Query) Range(from, to int) *Query {
	q.Offset = from
	q.Limit = to - from + 1
	return q
}

// Take limits the result to n rows
func (q *Query) Take(n int) *Query {
	q.Limit = n
	return q
}

// Eq builds a standalone equality predicate for use inside Or
func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

// IContains builds a standalone substring predicate for use inside Or
func IContains(column, substr string) Predicate {
	return Predicate{Column: column, Op: OpIContains, Value: substr}
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: bad identifier %q", ErrInvalidQuery, name)
	}
	return nil
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
