package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/decipher-hub/BizBot-ke/internal/classification"
	"github.com/decipher-hub/BizBot-ke/internal/cli"
	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/config"
	"github.com/decipher-hub/BizBot-ke/internal/ingest"
	"github.com/decipher-hub/BizBot-ke/internal/mpesa"
	"github.com/decipher-hub/BizBot-ke/internal/service"
	"github.com/decipher-hub/BizBot-ke/internal/storage"
)

const dateLayout = "2006-01-02"

// currentConfig returns the loaded configuration, loading it from viper on first use.
func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}

	v := viper.GetViper()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = cfg
	return cfg, nil
}

// openStorage opens the configured database and brings its schema up to date.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// autoCheckpoint snapshots the ledger before a write unless --no-checkpoint
// is set. Failures are logged and do not stop the command.
func autoCheckpoint(cmd *cobra.Command, store *storage.SQLiteStorage, operation string) {
	if skip, _ := cmd.Flags().GetBool("no-checkpoint"); skip {
		return
	}

	ctx := cmd.Context()
	if count, err := store.CountTransactions(ctx, service.TransactionFilter{}); err != nil || count == 0 {
		return
	}

	cm, err := store.Checkpoints()
	if err != nil {
		common.LogDebug("Checkpoints unavailable", common.Fields{"error": err.Error()})
		return
	}
	cp, err := cm.AutoCheckpoint(ctx, operation)
	if err != nil {
		slog.Warn("Failed to checkpoint ledger", "error", err)
		return
	}
	common.LogInfo("Checkpointed ledger", common.Fields{"id": cp.ID, "transactions": cp.Transactions})
}

// newParser builds a message parser from the configuration.
func newParser(cfg *config.Config, strict bool) *mpesa.Parser {
	opts := []mpesa.Option{mpesa.WithWorkers(cfg.Workers)}
	if cfg.Location != nil {
		opts = append(opts, mpesa.WithLocation(cfg.Location))
	}
	if strict || cfg.Strict {
		opts = append(opts, mpesa.WithStrictValidation())
	}
	return mpesa.NewParser(opts...)
}

// newIngestService wires the parser, storage and categorizers together.
// Remembered vendor categories take precedence over the built-in patterns.
func newIngestService(cfg *config.Config, store *storage.SQLiteStorage, strict bool) *ingest.Service {
	categorizer := classification.NewVendorCategorizer(store, classification.NewDefaultCategorizer())
	return ingest.NewService(newParser(cfg, strict), store, categorizer)
}

// location returns the zone dates given on the command line are read in.
func location(cfg *config.Config) *time.Location {
	if cfg.Location != nil {
		return cfg.Location
	}
	return mpesa.EastAfricaTime
}

// parseDay reads a YYYY-MM-DD flag value. End dates cover the whole day.
func parseDay(value string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value), err)
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day, nil
}

// readInput collects messages from files, or from in when no file is given or the file is "-".
func readInput(files []string, in io.Reader) ([]string, error) {
	if len(files) == 0 {
		return cli.ReadMessages(in)
	}

	var messages []string
	for _, path := range files {
		var (
			batch []string
			err   error
		)
		if path == "-" {
			batch, err = cli.ReadMessages(in)
		} else {
			batch, err = readFile(path)
		}
		if err != nil {
			return nil, err
		}
		messages = append(messages, batch...)
	}
	return messages, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	messages, err := cli.ReadMessages(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return messages, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
