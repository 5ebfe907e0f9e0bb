package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/backend"
	"github.com/tally-dev/tally/internal/config"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var name, entityType, companyID, storageBackend string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default(name, entityType)
			if companyID != "" {
				cfg.Business.ID = companyID
			}
			switch storageBackend {
			case config.BackendSQLite:
				cfg.Storage = config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join("data", "tally.db")}
			case config.BackendFile:
			default:
				return fmt.Errorf("--storage must be file or sqlite, got %q", storageBackend)
			}
			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, cfg)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&entityType, "entity-type", "retail", "entity type (retail, service_business)")
	cmd.Flags().StringVar(&companyID, "company-id", "", "company identifier (default \"default\")")
	cmd.Flags().StringVar(&storageBackend, "storage", config.BackendFile, "storage backend (file, sqlite)")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir string, cfg *config.Config) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", config.FileName, err)
	}

	for _, d := range []string{"logs", "import", filepath.Join("import", "processed"), "exports"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	st, err := backend.Open(ctx, cfg, dir)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SaveAccounts(ctx, cfg.Business.ID, accounts.DefaultChart(cfg.Business.EntityType)); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	gitignore := "exports/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized tally project %q at %s (%s storage)\n", cfg.Business.Name, dir, cfg.Storage.Backend)
	return nil
}
