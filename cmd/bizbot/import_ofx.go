package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/decipher-hub/BizBot-ke/internal/cli"
	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/config"
	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import transactions from OFX or QFX statements exported from your bank
or from the M-PESA statement service.

Examples:
  # Import a single statement
  bizbot import-ofx ~/Downloads/equity_jan_2024.ofx

  # Import every statement in a directory
  bizbot import-ofx ~/Downloads/statements/*.qfx

  # Preview without saving
  bizbot import-ofx --dry-run ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	cmd.Flags().Bool("no-checkpoint", false, "do not checkpoint the ledger before importing")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError("no files found to import", common.ErrNoInput)
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	ctx := cmd.Context()
	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var records []model.Transaction

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			common.LogError(err, "Failed to open file", common.Fields{"file": path})
			continue
		}
		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			common.LogError(err, "Failed to parse OFX file", common.Fields{"file": path})
			continue
		}

		added := 0
		for _, record := range parsed {
			key := record.MpesaTransactionID
			if key == "" {
				key = record.GenerateHash()
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, record)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	if dryRun {
		_, _ = fmt.Fprintln(out, cli.RenderBox("Import Preview", importPreview(records)))
		sample := records
		if len(sample) > 5 {
			sample = sample[:5]
		}
		_, _ = fmt.Fprintln(out, cli.RenderTransactions(sample))
		return nil
	}

	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	autoCheckpoint(cmd, store, "import")

	result, err := newIngestService(cfg, store, false).ImportRecords(ctx, records)
	if err != nil {
		return err
	}

	summary := cli.FormatSuccess(fmt.Sprintf("%d imported", result.Inserted))
	if result.Skipped > 0 {
		summary += "\n" + cli.FormatInfo(fmt.Sprintf("%d already stored", result.Skipped))
	}
	_, _ = fmt.Fprintln(out, cli.RenderBox("Import Summary", summary))

	return nil
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		pattern = config.ExpandPath(pattern)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	return files, nil
}

func importPreview(records []model.Transaction) string {
	oldest, newest := records[0].TransactionDate, records[0].TransactionDate
	in, out := decimal.Zero, decimal.Zero
	for _, r := range records {
		if r.TransactionDate.Before(oldest) {
			oldest = r.TransactionDate
		}
		if r.TransactionDate.After(newest) {
			newest = r.TransactionDate
		}
		if r.Type.Direction() == model.DirectionIncome {
			in = in.Add(r.Amount)
		} else {
			out = out.Add(r.Amount)
		}
	}

	return strings.Join([]string{
		fmt.Sprintf("Transactions: %d", len(records)),
		fmt.Sprintf("Date range:   %s to %s", oldest.Format(dateLayout), newest.Format(dateLayout)),
		fmt.Sprintf("Money in:     %s", cli.FormatAmount(in)),
		fmt.Sprintf("Money out:    %s", cli.FormatAmount(out)),
	}, "\n")
}
