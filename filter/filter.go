package filter

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Feresey/dumptrim/dump"
)

type Filter struct {
	log   *zap.Logger
	rules *Rules
}

func New(log *zap.Logger, rules *Rules) *Filter {
	return &Filter{
		log:   log.Named("filter"),
		rules: rules,
	}
}

// Decision is the verdict for one data block found in the dump.
type Decision struct {
	Table    dump.Identifier `json:"table"`
	Rows     int             `json:"rows"`
	Excluded bool            `json:"excluded"`
}

// Stats collects informational counters of a single pass. They are not part
// of the functional contract.
type Stats struct {
	TablesIncluded int
	TablesSkipped  int
	BlocksSkipped  int
	LinesDropped   int

	// Decisions lists the data blocks in the order they were found.
	Decisions []Decision
}

type pass struct {
	out   *bufio.Writer
	stats Stats

	// true while inside an excluded table's data block
	skipping bool
	// index into stats.Decisions of the block being counted, -1 outside blocks
	current int
}

// Transform copies src to dst line by line, dropping the data blocks of
// excluded tables: the introducing COPY line, the rows and the terminating
// end-of-data marker. Every other line passes through byte-identical, in
// input order. Malformed markers never fail the pass; on ambiguous input the
// filter prefers keeping lines.
func (f *Filter) Transform(src io.Reader, dst io.Writer) (*Stats, error) {
	in := bufio.NewReader(src)
	p := &pass{
		out:     bufio.NewWriter(dst),
		current: -1,
	}

	for {
		line, err := in.ReadString('\n')
		if line != "" {
			if werr := f.line(p, line); werr != nil {
				return nil, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dump: %w", err)
		}
	}

	if p.skipping {
		f.log.Warn("dump ended inside a skipped data block")
	}
	if err := p.out.Flush(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}
	return &p.stats, nil
}

func (f *Filter) line(p *pass, line string) error {
	switch {
	case dump.IsEndOfData(line):
		p.current = -1
		if p.skipping {
			p.skipping = false
			p.stats.BlocksSkipped++
			p.stats.LinesDropped++
			f.log.Debug("data block dropped")
			return nil
		}
		return p.emit(line)

	case dump.IsCopy(line):
		target, ok := dump.CopyTarget(line)
		if !ok {
			// No identifier to match: never skip on ambiguous input.
			return p.defaultRule(line)
		}
		return f.copyLine(p, line, target)

	default:
		if p.current >= 0 {
			p.stats.Decisions[p.current].Rows++
		}
		return p.defaultRule(line)
	}
}

func (f *Filter) copyLine(p *pass, line, target string) error {
	id := dump.ParseIdentifier(target)
	excluded, err := f.rules.Excluded(id)
	if err != nil {
		// Dropping data because a script broke is the wrong default.
		f.log.Error("exclusion rules failed, keeping table",
			zap.String("table", target), zap.Error(err))
		excluded = false
	}

	p.stats.Decisions = append(p.stats.Decisions, Decision{Table: id, Excluded: excluded})
	p.current = len(p.stats.Decisions) - 1

	if excluded {
		p.stats.TablesSkipped++
		f.log.Info("skipping table", zap.String("table", target))
		p.skipping = true
		p.stats.LinesDropped++
		return nil
	}

	p.stats.TablesIncluded++
	f.log.Info("including table", zap.String("table", target))
	// A start marker inside a skipped block does not end the skip:
	// suppression holds until the next end-of-data marker.
	return p.defaultRule(line)
}

func (p *pass) defaultRule(line string) error {
	if p.skipping {
		p.stats.LinesDropped++
		return nil
	}
	return p.emit(line)
}

func (p *pass) emit(line string) error {
	if _, err := p.out.WriteString(line); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
