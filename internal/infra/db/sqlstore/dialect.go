// Package sqlstore implements the persistence ports on database/sql. Driver
// differences (placeholders, quoting, upsert, catalog queries) live in a
// Dialect supplied by the mysql, postgres and sqlite packages.
package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect struct {
	Name string
	// Numbered switches ? placeholders to $1, $2, ...
	Numbered bool
	// Quote wraps reserved identifiers such as app_config.key.
	Quote string
	// UpsertConfig is the full config upsert statement with two placeholders.
	UpsertConfig string
	// ColumnExists counts columns matching (table, column).
	ColumnExists string
	// Schema creates the base tables; every statement must be idempotent.
	Schema []string
}

// Rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) Rebind(q string) string {
	if !d.Numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) ident(name string) string {
	return d.Quote + name + d.Quote
}

func (d Dialect) addColumn(table string, c Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, c.Name, c.Type)
}
