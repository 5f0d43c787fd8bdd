package main

import (
	"embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/Feresey/dumptrim/filter"
)

//go:embed templates/tables.tpl
var tablestpl embed.FS

const tablesTemplate = "tables.tpl"

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

type tablesFlags struct {
	flags
	outputPath *cli.StringFlag
	format     *cli.StringFlag
	exclude    *cli.StringSliceFlag
}

func (tf *tablesFlags) Set() []cli.Flag {
	return append(tf.flags.Set(),
		tf.outputPath,
		tf.format,
		tf.exclude,
	)
}

type tablesCommand struct {
	tf tablesFlags
	BaseCommand

	policy *filter.Policy
}

func NewTablesCommand(f flags) *tablesCommand {
	return &tablesCommand{
		tf: tablesFlags{
			flags: f,
			outputPath: &cli.StringFlag{
				Name:        "output",
				DefaultText: "stdout",
				Usage:       "-o tables.txt",
				Aliases:     []string{"o"},
			},
			format: &cli.StringFlag{
				Name:  "format",
				Value: formatTable,
				Usage: "table, csv or json",
				Action: func(ctx *cli.Context, format string) error {
					switch format {
					case formatTable, formatCSV, formatJSON:
						return nil
					}
					return fmt.Errorf("unknown format: %q", format)
				},
				Aliases: []string{"f"},
			},
			exclude: &cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   `-x my_schema.noisy_table`,
				Aliases: []string{"x"},
			},
		},
	}
}

func (t *tablesCommand) Command() *cli.Command {
	return &cli.Command{
		Name:        "tables",
		Description: "list the data blocks of a dump and the verdict for each",
		ArgsUsage:   "<dump file>",
		Flags:       t.tf.Set(),
		Before:      t.init,
		Action:      t.run,
		After:       t.cleanup,
	}
}

func (t *tablesCommand) init(ctx *cli.Context) error {
	base, err := NewBase(ctx, t.tf.flags)
	if err != nil {
		return cli.Exit(err, 2)
	}
	t.BaseCommand = base
	if t.cnf.Policy != "" {
		policy, err := loadPolicy(t.log, t.cnf.Policy)
		if err != nil {
			return cli.Exit(err, 2)
		}
		t.policy = policy
	}
	return nil
}

func (t *tablesCommand) cleanup(ctx *cli.Context) error {
	if t.policy != nil {
		t.policy.Close()
	}
	return nil
}

func (t *tablesCommand) run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit(xerrors.New("expected exactly one dump file argument"), 2)
	}
	input := ctx.Args().First()
	if input != stdinFileName {
		if err := checkInputFile(input); err != nil {
			return cli.Exit(err, 1)
		}
	}

	rules, err := filter.NewRules(t.cnf.ExcludeNames(t.tf.exclude.Get(ctx)), t.cnf.Patterns, t.policy)
	if err != nil {
		return cli.Exit(xerrors.Errorf("build exclusion rules: %w", err), 2)
	}

	stats, err := t.scan(rules, input)
	if err != nil {
		return err
	}

	if input == stdinFileName {
		input = "stdin"
	}
	return t.render(stats, input, t.tf.format.Get(ctx), t.tf.outputPath.Get(ctx))
}

// scan runs the filter pass without an output, only for its per-table
// decisions.
func (t *tablesCommand) scan(rules *filter.Rules, input string) (stats *filter.Stats, err error) {
	src, err := openInput(input)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, src.Close())
	}()

	return filter.New(t.log, rules).Transform(src, io.Discard)
}

func (t *tablesCommand) render(stats *filter.Stats, input, format, output string) error {
	if output != "" && output != stdinFileName {
		t.log.Sugar().Infof("write tables to %q", output)
	}
	return renderTo(output, func(w io.Writer) error {
		switch format {
		case formatCSV:
			var conv CSVConverter
			return csv.NewWriter(w).WriteAll(conv.ConvertDecisions(stats.Decisions))
		case formatJSON:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(stats.Decisions)
		default:
			return renderTable(w, input, stats.Decisions)
		}
	})
}

// renderTo writes whatever f produces to the file, or to stdout when no path
// is given.
func renderTo(path string, f func(w io.Writer) error) (err error) {
	if path == "" || path == stdinFileName {
		return f(os.Stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	return f(file)
}

func renderTable(w io.Writer, input string, decisions []filter.Decision) error {
	var maxName int
	for _, d := range decisions {
		if n := len(d.Table.String()); n > maxName {
			maxName = n
		}
	}

	t := template.New("").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{
			"space": func(namelen int, maxlen int) string {
				return strings.Repeat(" ", maxlen-namelen)
			},
			"verdict": verdictString,
		})
	tpl, err := t.ParseFS(tablestpl, "templates/*.tpl")
	if err != nil {
		return err
	}

	data := struct {
		Input     string
		MaxName   int
		Decisions []filter.Decision
	}{
		Input:     input,
		MaxName:   maxName,
		Decisions: decisions,
	}
	return tpl.ExecuteTemplate(w, tablesTemplate, data)
}
