package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/Feresey/dumptrim/filter"
)

const stdinFileName = "-"

type transformFlags struct {
	flags
	outputPath *cli.StringFlag
	dryRun     *cli.BoolFlag
	reportPath *cli.StringFlag
	exclude    *cli.StringSliceFlag
}

func (tf *transformFlags) Set() []cli.Flag {
	return append(tf.flags.Set(),
		tf.outputPath,
		tf.dryRun,
		tf.reportPath,
		tf.exclude,
	)
}

type transformCommand struct {
	tf transformFlags
	BaseCommand

	policy *filter.Policy
}

func NewTransformCommand(f flags) *transformCommand {
	return &transformCommand{
		tf: transformFlags{
			flags: f,
			outputPath: &cli.StringFlag{
				Name:        "output",
				DefaultText: "transformed_<input> next to the input",
				Usage:       "-o out.sql, '-' for stdout",
				Aliases:     []string{"o"},
			},
			dryRun: &cli.BoolFlag{
				Name:    "dry-run",
				Usage:   "read the dump and report, write nothing",
				Aliases: []string{"n"},
			},
			reportPath: &cli.StringFlag{
				Name:  "report",
				Usage: "write a json report of the pass",
			},
			exclude: &cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   `-x neon_auth.users_sync -x public._prisma_migrations`,
				Aliases: []string{"x"},
			},
		},
	}
}

func (t *transformCommand) Command() *cli.Command {
	return &cli.Command{
		Name:        "transform",
		Description: "copy a dump, dropping the data of excluded tables",
		ArgsUsage:   "<dump file>",
		Flags:       t.tf.Set(),
		Before:      t.init,
		Action:      t.run,
		After:       t.cleanup,
	}
}

func (t *transformCommand) init(ctx *cli.Context) error {
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

func (t *transformCommand) cleanup(ctx *cli.Context) error {
	if t.policy != nil {
		t.policy.Close()
	}
	return nil
}

func (t *transformCommand) run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit(xerrors.New("expected exactly one dump file argument"), 2)
	}
	input := ctx.Args().First()
	if input != stdinFileName {
		if err := checkInputFile(input); err != nil {
			return cli.Exit(err, 1)
		}
	}

	output := t.tf.outputPath.Get(ctx)
	switch {
	case t.tf.dryRun.Get(ctx):
		output = ""
	case output == "":
		if input == stdinFileName {
			return cli.Exit(xerrors.New("reading from stdin requires an explicit -o"), 2)
		}
		output = transformedPath(input)
	}

	rules, err := filter.NewRules(t.cnf.ExcludeNames(t.tf.exclude.Get(ctx)), t.cnf.Patterns, t.policy)
	if err != nil {
		return cli.Exit(xerrors.Errorf("build exclusion rules: %w", err), 2)
	}

	started := time.Now()
	stats, err := t.transform(rules, input, output)
	if err != nil {
		return err
	}

	slog := t.log.Sugar()
	slog.Infof("kept %d tables, dropped %d (%d lines)",
		stats.TablesIncluded, stats.TablesSkipped, stats.LinesDropped)
	if output != "" && output != stdinFileName {
		slog.Infof("transformed dump written to %q", output)
	}

	if reportPath := t.tf.reportPath.Get(ctx); reportPath != "" {
		if err := writeReport(reportPath, newReport(input, output, started, stats)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		slog.Infof("report written to %q", reportPath)
	}
	return nil
}

// transform runs the filter pass. An empty output means a dry run, "-" means
// stdout.
func (t *transformCommand) transform(
	rules *filter.Rules,
	input, output string,
) (stats *filter.Stats, err error) {
	src, err := openInput(input)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, src.Close())
	}()

	var dst io.Writer = io.Discard
	switch output {
	case "":
	case stdinFileName:
		dst = os.Stdout
	default:
		var file *os.File
		file, err = os.Create(output)
		if err != nil {
			return nil, fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			err = errors.Join(err, file.Close())
		}()
		dst = file
	}

	return filter.New(t.log, rules).Transform(src, dst)
}

func openInput(input string) (io.ReadCloser, error) {
	if input == stdinFileName {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	return file, nil
}

func checkInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return xerrors.Errorf("input file does not exist: %q", path)
	}
	if err != nil {
		return xerrors.Errorf("stat input file: %w", err)
	}
	if info.IsDir() {
		return xerrors.Errorf("input path is a directory: %q", path)
	}
	return nil
}

// transformedPath derives the output name from the input: transformed_<base>
// next to the input file.
func transformedPath(input string) string {
	return filepath.Join(filepath.Dir(input), "transformed_"+filepath.Base(input))
}

func loadPolicy(log *zap.Logger, path string) (policy *filter.Policy, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("open policy script: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	policy, err = filter.NewPolicy(log, file, filepath.Base(path))
	if err != nil {
		return nil, xerrors.Errorf("load policy script: %w", err)
	}
	return policy, nil
}
