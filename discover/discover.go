// Package discover lists tables of a live database so that exclusion rules
// can be drafted from what is actually there instead of from guesswork.
package discover

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Feresey/dumptrim/dump"
)

type Discoverer struct {
	conn Executor
	log  *zap.Logger
	q    Lister
}

//go:generate mockery --name Lister --inpackage --testonly --with-expecter --quiet
type Lister interface {
	Tables(context.Context, Executor, []Pattern) ([]Table, error)
}

// Marker gives the verdict the exclusion rules would hand to a table.
type Marker interface {
	Excluded(dump.Identifier) (bool, error)
}

func New(
	conn Executor,
	log *zap.Logger,
) *Discoverer {
	return &Discoverer{
		log:  log.Named("discover"),
		conn: conn,
		q:    Queries{},
	}
}

// Suggestion is a discovered table together with the verdict the current
// exclusion rules would give it.
type Suggestion struct {
	Table   dump.Identifier
	EstRows int64
	Exclude bool
}

// Suggest lists tables matching the patterns and marks the ones the rules
// would exclude. The result keeps the listing order of the database.
func (d *Discoverer) Suggest(
	ctx context.Context,
	patterns []Pattern,
	mark Marker,
) ([]Suggestion, error) {
	tables, err := d.q.Tables(ctx, d.conn, patterns)
	if err != nil {
		d.log.Error("failed to query tables", zap.Error(err))
		return nil, fmt.Errorf("list tables: %w", err)
	}
	d.log.Debug("loaded tables", zap.Reflect("tables", tables))

	suggestions := make([]Suggestion, 0, len(tables))
	for _, table := range tables {
		id := dump.Identifier{Schema: table.Schema, Name: table.Name}
		excluded, err := mark.Excluded(id)
		if err != nil {
			d.log.Error("exclusion rules failed", zap.Stringer("table", id), zap.Error(err))
			excluded = false
		}
		suggestions = append(suggestions, Suggestion{
			Table:   id,
			EstRows: table.EstRows,
			Exclude: excluded,
		})
	}
	return suggestions, nil
}
