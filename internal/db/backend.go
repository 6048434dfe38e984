package db

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Backend is a table store the grid pages through and writes back to.
type Backend interface {
	// Name is a display-safe description of the connection.
	Name() string
	ListTables(ctx context.Context) ([]string, error)
	PrimaryKeys(ctx context.Context, table string) ([]string, error)
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)
	// FetchPage reads up to limit rows starting at offset, ordered by
	// orderBy when it is not empty.
	FetchPage(ctx context.Context, table string, orderBy []string, offset, limit int) (*Page, error)
	// Apply runs stmts in one transaction.
	Apply(ctx context.Context, stmts []Statement) error
	Dialect
	Close()
}

// Dialect renders the parts of a statement that differ between backends.
type Dialect interface {
	// Placeholder returns the marker of the n-th (1-based) argument.
	Placeholder(n int) string
}

// ColumnInfo holds metadata about a table column.
type ColumnInfo struct {
	Name       string
	DataType   string
	Nullable   bool
	HasDefault bool
	// MaxLength is the declared character limit, 0 when unbounded.
	MaxLength int
}

// IsNumeric reports whether the column holds numbers.
func (c ColumnInfo) IsNumeric() bool {
	t := strings.ToLower(c.DataType)
	if strings.Contains(t, "interval") {
		return false
	}
	for _, n := range []string{"int", "numeric", "decimal", "real", "double", "float"} {
		if strings.Contains(t, n) {
			return true
		}
	}
	return false
}

// Page is one slice of a table.
type Page struct {
	Columns []string
	Rows    []map[string]any
	// More is set when rows exist past the page.
	More    bool
	Elapsed time.Duration
}

// Statement is one parameterized statement.
type Statement struct {
	SQL  string
	Args []any
}

// QuoteIdent quotes a table or column name.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func selectPage(d Dialect, table string, orderBy []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", QuoteIdent(table))
	if len(orderBy) > 0 {
		cols := make([]string, len(orderBy))
		for i, c := range orderBy {
			cols[i] = QuoteIdent(c)
		}
		fmt.Fprintf(&b, " ORDER BY %s", strings.Join(cols, ", "))
	}
	fmt.Fprintf(&b, " LIMIT %s OFFSET %s", d.Placeholder(1), d.Placeholder(2))
	return b.String()
}

// trimPage drops the look-ahead row fetched to detect more data.
func trimPage(p *Page, limit int) {
	if len(p.Rows) > limit {
		p.Rows = p.Rows[:limit]
		p.More = true
	}
}

// normalize turns driver values into the plain types cells are edited as.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int, int16, int32, int64, float32, float64, time.Time:
		return v
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case driver.Valuer:
		dv, err := x.Value()
		if err == nil {
			return normalize(dv)
		}
	}
	return fmt.Sprintf("%v", v)
}

// lengthFromType reads n out of types like varchar(n).
func lengthFromType(t string) int {
	open := strings.IndexByte(t, '(')
	end := strings.IndexByte(t, ')')
	if open < 0 || end < open {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(t[open+1 : end]))
	if err != nil {
		return 0
	}
	return n
}
