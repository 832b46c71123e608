// Package sqltour parses sqltour command configuration and runs the catalog
// script.
package sqltour

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/message"

	entrypoint "github.com/louisbranch/sqltour/internal/platform/cmd"
	"github.com/louisbranch/sqltour/internal/platform/storage/sqldialect"
	"github.com/louisbranch/sqltour/internal/services/catalog/storage/sqlstore"
	"github.com/louisbranch/sqltour/internal/tour"
)

// Config holds sqltour command configuration.
type Config struct {
	Driver   string   `env:"SQLTOUR_DRIVER" envDefault:"sqlite"`
	DSN      string   `env:"SQLTOUR_DSN"`
	LogSQL   bool     `env:"SQLTOUR_LOG_SQL" envDefault:"true"`
	LogLevel string   `env:"SQLTOUR_LOG_LEVEL" envDefault:"info"`
	Lang     string   `env:"SQLTOUR_LANG" envDefault:"en"`
	Steps    []string `env:"SQLTOUR_STEPS" envSeparator:","`
	List     bool
}

// stepList collects repeated -step flags. The first flag replaces any steps
// taken from the environment.
type stepList struct {
	target *[]string
	set    bool
}

func (s *stepList) String() string {
	if s == nil || s.target == nil {
		return ""
	}
	return strings.Join(*s.target, ",")
}

func (s *stepList) Set(value string) error {
	if !s.set {
		*s.target = nil
		s.set = true
	}
	for _, name := range strings.Split(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*s.target = append(*s.target, name)
		}
	}
	return nil
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "SQL driver: sqlite or postgres")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "Database DSN (default: the driver's local database)")
	fs.BoolVar(&cfg.LogSQL, "log-sql", cfg.LogSQL, "Echo every SQL statement")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "Output language (en, pt-BR)")
	fs.Var(&stepList{target: &cfg.Steps}, "step", "Run only this step; repeatable (default: all)")
	fs.BoolVar(&cfg.List, "list", false, "List the script steps and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the configured database and runs the script, writing results to
// out and logs to errOut.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	if cfg.List {
		printer := message.NewPrinter(tour.ResolveLanguage(cfg.Lang))
		for _, step := range tour.Steps() {
			fmt.Fprintf(out, "  %-18s %s\n", step.Name, printer.Sprintf(step.Title))
		}
		return nil
	}

	dialect, err := sqldialect.Parse(cfg.Driver)
	if err != nil {
		return err
	}
	logger := logrus.New()
	logger.SetOutput(errOut)
	if err := entrypoint.ConfigureLogging(logger, cfg.LogLevel); err != nil {
		return err
	}

	options := entrypoint.RunOptions{Logger: logger}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceTour, options, func(ctx context.Context) error {
		storeOpts := sqlstore.Options{Dialect: dialect, DSN: cfg.DSN}
		if cfg.LogSQL {
			storeOpts.Logger = logger.WithField("component", "sql")
		}
		store, err := sqlstore.Open(ctx, storeOpts)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("close store")
			}
		}()

		runner := tour.Runner{
			Store:    store,
			Out:      out,
			Language: tour.ResolveLanguage(cfg.Lang),
			Logger:   logger.WithField("component", "tour"),
		}
		return runner.Run(ctx, cfg.Steps...)
	})
}
