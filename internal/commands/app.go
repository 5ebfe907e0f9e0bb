package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/backend"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/payroll"
	"github.com/tally-dev/tally/internal/store"
)

const configName = config.FileName

// app is everything a command needs once the project is loaded.
type app struct {
	dir     string
	actor   string
	cfg     *config.Config
	log     *log.Logger
	store   store.Store
	audit   *auditlog.Log
	company string
}

// openApp loads the project config and opens its store.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading %s (run tally init first?): %w", configName, err)
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{Level: level, Output: cmd.ErrOrStderr(), JSON: cfg.Log.JSON})

	st, err := backend.Open(cmd.Context(), cfg, dir)
	if err != nil {
		return nil, err
	}
	logger.WithComponent(log.ComponentStorage).Debug("store opened", log.FieldBackend, cfg.Storage.Backend, log.FieldPath, cfg.StoragePath(dir))

	return &app{
		dir:     dir,
		actor:   opts.actor,
		cfg:     cfg,
		log:     logger,
		store:   st,
		audit:   auditlog.New(dir),
		company: cfg.Business.ID,
	}, nil
}

func (a *app) Close() error { return a.store.Close() }

func (a *app) ledger() *ledger.Service {
	return ledger.NewService(a.store, a.log)
}

func (a *app) payroll() *payroll.Service {
	return payroll.NewService(a.store, a.log, payroll.Options{
		Ledger:        a.ledger(),
		DefaultRates:  a.cfg.Payroll.DefaultTaxRates,
		DefaultMethod: a.cfg.Payroll.PaymentMethod,
		YearStart:     a.cfg.Fiscal.YearStartFor,
	})
}

// record writes an audit entry. Failures are logged, not returned: the
// action itself already succeeded.
func (a *app) record(action, details, reference string) {
	if err := a.audit.Record(a.actor, action, details, reference); err != nil {
		a.log.Warn("audit log write failed", log.FieldError, err, log.FieldPath, a.audit.Path())
	}
}

// withApp wraps a RunE body with openApp/Close.
func withApp(opts *rootOptions, fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return fn(ctx, cmd, a, args)
	}
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "tally"
}

// parseDay parses an optional YYYY-MM-DD flag; "" yields the zero time.
func parseDay(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := model.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

// parseAmount parses an optional decimal flag; "" yields zero.
func parseAmount(flag, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: invalid number %q", flag, s)
	}
	return d, nil
}
