package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/transport-request-api/internal/bootstrap"
	"github.com/noah-isme/transport-request-api/internal/models"
	"github.com/noah-isme/transport-request-api/pkg/config"
	"github.com/noah-isme/transport-request-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "transportctl",
	Short: "Operator tooling for the transportation request API",
	Long: `transportctl runs maintenance tasks against the same database and
configuration as the API server. Configuration is read from the environment
and an optional .env file.

Examples:
  # Apply pending migrations
  transportctl migrate

  # Provision the first administrator
  transportctl create-admin --email ops@district.org --password '...' --first Grace --last Hopper

  # Export this month's Henrico requests as PDF
  transportctl report --type transportation --district Henrico --from 2025-09-01 --format pdf --out henrico.pdf`,
	SilenceUsage: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(migrateCmd(), createAdminCmd(), createDistrictCmd(), reportCmd(), pruneDocumentsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// operator is the session transportctl acts under. It is never issued a token.
var operator = models.Session{FullName: "transportctl", Role: models.RoleAdmin}

// env bundles what a command needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	deps   bootstrap.Deps
}

func (e *env) close() {
	e.deps.Close(e.logger)
	_ = e.logger.Sync()
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	deps, err := bootstrap.Open(cfg, false, logr)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &env{cfg: cfg, logger: logr, deps: deps}, nil
}

// withServices opens the stores, builds services and keeps the activity writer
// running for the duration of fn so audit entries are flushed before exit.
func withServices(ctx context.Context, fn func(context.Context, *bootstrap.Services) error) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	services, err := bootstrap.BuildServices(e.cfg, e.deps, e.logger)
	if err != nil {
		return err
	}
	services.Activity.Start(context.Background())
	defer services.Activity.Stop()

	return fn(ctx, services)
}
