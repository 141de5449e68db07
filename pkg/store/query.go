package store

import (
	"fmt"
	"regexp"
	"sort"
)

// Row is a single result row mapped from field name to raw column value.
// Values keep whatever type the driver returned; no coercion is applied.
type Row map[string]any

// Clause is an extra query fragment appended after the primary condition,
// typically for tenant scoping or date filters. The SQL text uses ?-style
// placeholders and the values are always bound, never interpolated.
type Clause struct {
	SQL  string
	Args []any
}

// ServerScope restricts a query to rows belonging to one chat server.
func ServerScope(guildID int64) Clause {
	return Clause{SQL: "AND server_id = ?", Args: []any{guildID}}
}

// DateScope restricts a query to rows with a matching date column.
func DateScope(date string) Clause {
	return Clause{SQL: "AND date = ?", Args: []any{date}}
}

// And combines two clauses into one.
func (c Clause) And(other Clause) Clause {
	if c.SQL == "" {
		return other
	}
	if other.SQL == "" {
		return c
	}
	return Clause{
		SQL:  c.SQL + " " + other.SQL,
		Args: append(append([]any{}, c.Args...), other.Args...),
	}
}

// Filter describes the primary match condition of a search or update.
type Filter struct {
	// Field is the column compared against Value.
	Field string

	// Value is bound as a statement parameter.
	Value any

	// CaseInsensitive wraps both sides of the comparison in LOWER().
	CaseInsensitive bool

	// Extra is an optional additional fragment, e.g. ServerScope.
	Extra Clause
}

// condition renders the WHERE clause and its bound arguments.
func (f Filter) condition() (string, []any, error) {
	if err := checkIdent(f.Field); err != nil {
		return "", nil, err
	}

	cond := fmt.Sprintf("WHERE %s = ?", f.Field)
	if f.CaseInsensitive {
		cond = fmt.Sprintf("WHERE LOWER(%s) = LOWER(?)", f.Field)
	}

	args := []any{f.Value}
	if f.Extra.SQL != "" {
		cond += " " + f.Extra.SQL
		args = append(args, f.Extra.Args...)
	}
	return cond, args, nil
}

// identPattern is the shape of every table and field name the store will
// splice into SQL text. Anything else is rejected before a statement is built.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// knownTables enumerates the tables the bot owns. Table names arrive from
// calling code, never from chat input, but the allow-list keeps a typo or a
// hostile value from reaching the SQL text.
var knownTables = map[string]struct{}{
	"server_config": {},
	"teams":         {},
	"player_data":   {},
	"cache":         {},
}

func checkTable(table string) error {
	if _, ok := knownTables[table]; !ok {
		return fmt.Errorf("unknown table: %q", table)
	}
	return nil
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q", name)
	}
	return nil
}

// sortedKeys returns map keys in lexical order so generated statements
// are deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
