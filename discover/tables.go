package discover

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type Queries struct{}

type Table struct {
	Schema  string
	Name    string
	EstRows int64
}

// Pattern restricts discovery to schemas (and optionally tables) matching
// SQL LIKE expressions.
type Pattern struct {
	Schema string
	Tables string
}

func (p Pattern) String() string {
	if p.Tables == "" {
		return p.Schema
	}
	return p.Schema + "." + p.Tables
}

type queryBuilder struct {
	queries []string
	argnum  int
	args    []any
}

func (q *queryBuilder) NextArgNum() int {
	q.argnum++
	return q.argnum
}

func (q *queryBuilder) Append(query string, args ...any) {
	q.queries = append(q.queries, query)
	q.args = append(q.args, args...)
}

func (Queries) Tables(ctx context.Context, exec Executor, p []Pattern) ([]Table, error) {
	const queryTablesSQL = `-- list ordinary tables
SELECT
	ns.nspname AS schema_name,
	c.relname AS table_name,
	GREATEST(c.reltuples, 0)::BIGINT AS est_rows
FROM
	pg_class c
	JOIN pg_namespace ns ON ns.oid = c.relnamespace
WHERE
	c.relkind = 'r'`

	var qb queryBuilder

	for _, pattern := range p {
		args := []any{pattern.Schema}
		paramIndex := qb.NextArgNum()
		match := fmt.Sprintf("ns.nspname LIKE $%d", paramIndex)
		if pattern.Tables != "" {
			args = append(args, pattern.Tables)
			paramIndex := qb.NextArgNum()
			match = fmt.Sprintf("%s AND c.relname LIKE $%d", match, paramIndex)
		}

		qb.Append(match, args...)
	}

	if len(qb.queries) == 0 {
		// no patterns configured, list everything except system schemas
		qb.Append(`ns.nspname NOT LIKE 'pg\_%' AND ns.nspname <> 'information_schema'`)
	}

	return queryAll(
		ctx, exec,
		func(rows pgx.Rows, v *Table) error {
			return rows.Scan(
				&v.Schema,
				&v.Name,
				&v.EstRows,
			)
		},
		fmt.Sprintf(
			"%s AND (%s) ORDER BY ns.nspname, c.relname",
			queryTablesSQL,
			strings.Join(qb.queries, " OR "),
		),
		qb.args...)
}
