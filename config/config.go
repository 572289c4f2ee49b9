// Package config assembles the immutable run configuration from an
// optional YAML file, command-line flags and environment variables.
// Credentials resolve env > file; flags override the file's display
// defaults.
package config

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"kitefolio/internal/domain"
)

const (
	defaultMode        = domain.ModeSimple
	defaultSortBy      = domain.SortByDayChange
	defaultOrder       = domain.OrderDesc
	defaultSnapshotDir = "kite_snapshots"
)

// Config is built once at startup and passed by reference; nothing
// mutates it afterwards.
type Config struct {
	APIKey       string
	APISecret    string
	RequestToken string
	AccessToken  string

	Mode        domain.Mode
	SortBy      domain.SortKey
	Order       domain.SortOrder
	Debug       bool
	ExportCSV   bool
	SnapshotDir string
}

// fileConfig is the YAML shape; everything is optional.
type fileConfig struct {
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	RequestToken string `yaml:"request_token"`
	AccessToken  string `yaml:"access_token"`
	DefaultMode  string `yaml:"default_mode,omitempty"`
	DefaultSort  string `yaml:"default_sort,omitempty"`
	DefaultOrder string `yaml:"default_order,omitempty"`
	ExportCSV    bool   `yaml:"export_csv,omitempty"`
	SnapshotDir  string `yaml:"snapshot_dir,omitempty"`
}

// Get parses os.Args and the process environment.
func Get() (*Config, error) {
	return parse(os.Args[1:], os.Getenv)
}

func parse(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("kitefolio", flag.ContinueOnError)

	configPath := fs.String("config", "", "path to yaml config")
	detailed := fs.Bool("detailed", false, "show detailed view with all tables")
	holdings := fs.Bool("holdings", false, "show only holdings")
	positions := fs.Bool("positions", false, "show only positions")
	funds := fs.Bool("funds", false, "show only funds")
	sortBy := fs.String("sort", "", "sort holdings by: symbol, quantity, ltp, invested, value, pnl, pnl_pct, day_change")
	order := fs.String("order", "", "sort order: asc or desc")
	debug := fs.Bool("debug", false, "echo raw API responses")
	export := fs.Bool("export", false, "export CSV snapshots")
	snapshotDir := fs.String("snapshot-dir", "", "directory for CSV snapshots")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Mode:        defaultMode,
		SortBy:      defaultSortBy,
		Order:       defaultOrder,
		SnapshotDir: defaultSnapshotDir,
	}

	if *configPath != "" {
		if err := applyFile(cfg, *configPath); err != nil {
			return nil, err
		}
	}

	// env credentials beat anything from the file
	if v := getenv("KITE_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := getenv("KITE_API_SECRET"); v != "" {
		cfg.APISecret = v
	}
	if v := getenv("KITE_REQUEST_TOKEN"); v != "" {
		cfg.RequestToken = v
	}
	if v := getenv("KITE_ACCESS_TOKEN"); v != "" {
		cfg.AccessToken = v
	}

	mode, err := pickMode(*detailed, *holdings, *positions, *funds, cfg.Mode)
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode

	if *sortBy != "" {
		if cfg.SortBy, err = domain.ParseSortKey(*sortBy); err != nil {
			return nil, err
		}
	}
	if *order != "" {
		if cfg.Order, err = domain.ParseSortOrder(*order); err != nil {
			return nil, err
		}
	}
	if *debug {
		cfg.Debug = true
	}
	if *export {
		cfg.ExportCSV = true
	}
	if *snapshotDir != "" {
		cfg.SnapshotDir = *snapshotDir
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrap(err, "parse config file")
	}

	cfg.APIKey = fc.APIKey
	cfg.APISecret = fc.APISecret
	cfg.RequestToken = fc.RequestToken
	cfg.AccessToken = fc.AccessToken
	cfg.ExportCSV = fc.ExportCSV

	if fc.DefaultMode != "" {
		if cfg.Mode, err = domain.ParseMode(fc.DefaultMode); err != nil {
			return errors.Wrap(err, "config file")
		}
	}
	if fc.DefaultSort != "" {
		if cfg.SortBy, err = domain.ParseSortKey(fc.DefaultSort); err != nil {
			return errors.Wrap(err, "config file")
		}
	}
	if fc.DefaultOrder != "" {
		if cfg.Order, err = domain.ParseSortOrder(fc.DefaultOrder); err != nil {
			return errors.Wrap(err, "config file")
		}
	}
	if fc.SnapshotDir != "" {
		cfg.SnapshotDir = fc.SnapshotDir
	}

	return nil
}

// pickMode resolves the mutually exclusive mode flags against the
// configured default.
func pickMode(detailed, holdings, positions, funds bool, fallback domain.Mode) (domain.Mode, error) {
	var picked []domain.Mode
	if detailed {
		picked = append(picked, domain.ModeDetailed)
	}
	if holdings {
		picked = append(picked, domain.ModeHoldings)
	}
	if positions {
		picked = append(picked, domain.ModePositions)
	}
	if funds {
		picked = append(picked, domain.ModeFunds)
	}

	switch len(picked) {
	case 0:
		return fallback, nil
	case 1:
		return picked[0], nil
	}
	return "", errors.New("flags -detailed, -holdings, -positions and -funds are mutually exclusive")
}
