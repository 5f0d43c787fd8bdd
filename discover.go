package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/Feresey/dumptrim/discover"
	"github.com/Feresey/dumptrim/filter"
)

type discoverFlags struct {
	flags
	outputPath *cli.StringFlag
	dbconn     *cli.StringFlag
}

func (df *discoverFlags) Set() []cli.Flag {
	return append(df.flags.Set(),
		df.outputPath,
		df.dbconn,
	)
}

type discoverCommand struct {
	df discoverFlags
	BaseCommand

	conn   *pgx.Conn
	policy *filter.Policy
}

func NewDiscoverCommand(f flags) *discoverCommand {
	return &discoverCommand{
		df: discoverFlags{
			flags: f,
			outputPath: &cli.StringFlag{
				Name:        "output",
				DefaultText: "stdout",
				Usage:       "-o dumptrim.yml",
				Aliases:     []string{"o"},
			},
			dbconn: &cli.StringFlag{
				Name:  "dbconn",
				Usage: "postgres connection string, overrides the config",
			},
		},
	}
}

func (d *discoverCommand) Command() *cli.Command {
	return &cli.Command{
		Name:        "discover",
		Description: "list the tables of a live database and draft a config",
		Flags:       d.df.Set(),
		Before:      d.init,
		Action:      d.run,
		After:       d.cleanup,
	}
}

func (d *discoverCommand) init(ctx *cli.Context) error {
	base, err := NewBase(ctx, d.df.flags)
	if err != nil {
		return cli.Exit(err, 2)
	}
	d.BaseCommand = base
	if conn := d.df.dbconn.Get(ctx); conn != "" {
		d.cnf.DB.Conn = conn
	}
	if d.cnf.DB.Conn == "" {
		return cli.Exit(xerrors.New("no connection string, set dbconn in the config or pass --dbconn"), 2)
	}
	if d.cnf.Policy != "" {
		policy, err := loadPolicy(d.log, d.cnf.Policy)
		if err != nil {
			return cli.Exit(err, 2)
		}
		d.policy = policy
	}
	conn, err := d.connectDB(ctx, d.df.debug.Get(ctx))
	if err != nil {
		return cli.Exit(err, 3)
	}
	d.conn = conn
	return nil
}

func (d *discoverCommand) cleanup(ctx *cli.Context) error {
	if d.policy != nil {
		d.policy.Close()
	}
	if d.conn == nil {
		return nil
	}
	if err := d.conn.Close(ctx.Context); err != nil {
		return fmt.Errorf("close pgx conn: %w", err)
	}
	return nil
}

func (d *discoverCommand) run(ctx *cli.Context) error {
	rules, err := filter.NewRules(d.cnf.ExcludeNames(nil), d.cnf.Patterns, d.policy)
	if err != nil {
		return cli.Exit(xerrors.Errorf("build exclusion rules: %w", err), 2)
	}

	suggestions, err := discover.New(d.conn, d.log).Suggest(ctx.Context, d.cnf.Discover, rules)
	if err != nil {
		var qErr discover.Error
		if errors.As(err, &qErr) {
			d.log.Error(qErr.Pretty())
		}
		return fmt.Errorf("discover tables: %w", err)
	}
	d.log.Sugar().Infof("discovered %d tables", len(suggestions))

	if output := d.df.outputPath.Get(ctx); output != "" && output != stdinFileName {
		d.log.Sugar().Infof("write config skeleton to %q", output)
	}
	return renderTo(d.df.outputPath.Get(ctx), func(w io.Writer) error {
		return writeSkeleton(w, d.cnf, suggestions)
	})
}

// writeSkeleton renders a ready-to-edit config. The discovered tables go
// into a comment block so that enabling one more exclusion is a one-line
// edit.
func writeSkeleton(w io.Writer, cnf *AppConfig, suggestions []discover.Suggestion) error {
	fc := FileConfig{
		DBConn:   cnf.DB.Conn,
		Patterns: cnf.Patterns,
		Policy:   cnf.Policy,
	}
	for _, p := range cnf.Discover {
		fc.Discover = append(fc.Discover, p.String())
	}
	for _, s := range suggestions {
		if s.Exclude {
			fc.Exclude = append(fc.Exclude, s.Table.String())
		}
	}

	out, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal config skeleton: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\n# discovered tables:\n"); err != nil {
		return err
	}
	for _, s := range suggestions {
		var mark string
		if s.Exclude {
			mark = ", excluded"
		}
		if _, err := fmt.Fprintf(w, "# %s (~%d rows%s)\n", s.Table, s.EstRows, mark); err != nil {
			return err
		}
	}
	return nil
}
