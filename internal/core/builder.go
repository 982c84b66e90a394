// File: internal/core/builder.go
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the bind-parameter style of the target database.
type Dialect int

const (
	// Question binds with "?" (MySQL, TiDB).
	Question Dialect = iota
	// Dollar binds with "$1", "$2", ... (PostgreSQL).
	Dollar
)

// QueryBuilder assembles parameterized SELECT statements. Conditions are
// written with "?" and rebound for the dialect at Build time; values are
// never spliced into the SQL text.
type QueryBuilder struct {
	dialect    Dialect
	table      string
	selectCols []string
	whereOps   []string
	args       []any
	limit      int
}

func NewQueryBuilder(d Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: d}
}

func (qb *QueryBuilder) From(table string) *QueryBuilder {
	qb.table = table
	return qb
}

// Select lists the result columns; "*" when none are given.
func (qb *QueryBuilder) Select(cols ...string) *QueryBuilder {
	qb.selectCols = cols
	return qb
}

// Where appends a condition joined with AND.
func (qb *QueryBuilder) Where(cond string, vals ...any) *QueryBuilder {
	qb.whereOps = append(qb.whereOps, cond)
	qb.args = append(qb.args, vals...)
	return qb
}

// Limit sets the LIMIT clause
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.limit = n
	return qb
}

// Build assembles the SQL query string and returns it with args
func (qb *QueryBuilder) Build() (string, []any) {
	parts := []string{"SELECT"}
	if len(qb.selectCols) > 0 {
		parts = append(parts, strings.Join(qb.selectCols, ", "))
	} else {
		parts = append(parts, "*")
	}
	parts = append(parts, "FROM", qb.table)
	if len(qb.whereOps) > 0 {
		parts = append(parts, "WHERE", strings.Join(qb.whereOps, " AND "))
	}
	if qb.limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", qb.limit))
	}
	query := strings.Join(parts, " ")
	return Rebind(qb.dialect, query), qb.args
}

// Rebind rewrites "?" placeholders for the dialect. Question marks inside
// single-quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d != Dollar || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
