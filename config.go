package main

import (
	"os"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/Feresey/dumptrim/db"
	"github.com/Feresey/dumptrim/discover"
)

// DefaultExclude names tables that are noise in nearly every backup this
// tool gets pointed at. It applies only when no exclusion rule is
// configured at all.
var DefaultExclude = []string{
	"neon_auth.users_sync",
	"public._prisma_migrations",
}

type FileConfig struct {
	DBConn   string   `yaml:"dbconn,omitempty"`
	Exclude  []string `yaml:"exclude,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
	Policy   string   `yaml:"policy,omitempty"`
	Discover []string `yaml:"discover,omitempty"`
}

type AppConfig struct {
	DB       db.Config
	Exclude  []string
	Patterns []string
	Policy   string
	Discover []discover.Pattern
}

func (fc FileConfig) Build() (*AppConfig, error) {
	patterns, err := fc.parsePatterns(fc.Discover)
	if err != nil {
		return nil, xerrors.Errorf("parse discover patterns failed: %w", err)
	}
	return &AppConfig{
		DB: db.Config{
			Conn: fc.DBConn,
		},
		Exclude:  fc.Exclude,
		Patterns: fc.Patterns,
		Policy:   fc.Policy,
		Discover: patterns,
	}, nil
}

// ExcludeNames merges configured exclusions with names from the command
// line. The defaults kick in only when no names, patterns and no policy
// are configured anywhere.
func (c *AppConfig) ExcludeNames(extra []string) []string {
	res := make([]string, 0, len(c.Exclude)+len(extra))
	res = append(res, c.Exclude...)
	res = append(res, extra...)
	if len(res) == 0 && len(c.Patterns) == 0 && c.Policy == "" {
		return DefaultExclude
	}
	return res
}

// ReadConfig loads the config file. A missing file is fine unless the path
// was given explicitly.
func ReadConfig(confPath string, required bool) (*AppConfig, error) {
	var fc FileConfig
	file, err := os.ReadFile(confPath)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return fc.Build()
		}
		return nil, xerrors.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, &fc); err != nil {
		return nil, xerrors.Errorf("parse config: %w", err)
	}

	c, err := fc.Build()
	if err != nil {
		return nil, xerrors.Errorf("process config data: %w", err)
	}
	return c, nil
}

func (fc FileConfig) parsePatterns(
	patterns []string,
) ([]discover.Pattern, error) {
	res := make([]discover.Pattern, 0, len(patterns))
	for _, pattern := range patterns {
		// TODO unquote
		parts := strings.Split(pattern, ".")

		var p discover.Pattern
		switch {
		case len(parts) == 1:
			p.Schema = parts[0]
		case len(parts) == 2:
			p.Schema = parts[0]
			p.Tables = parts[1]
		default:
			return nil, xerrors.Errorf("wrong pattern: %q", pattern)
		}
		res = append(res, p)
	}

	return res, nil
}
