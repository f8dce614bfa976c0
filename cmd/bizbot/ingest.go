package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/decipher-hub/BizBot-ke/internal/cli"
	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/ingest"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Parse M-PESA messages and store them as transactions",
		Long: `Parse M-PESA confirmation messages, categorize them and store them in the ledger.

Messages are read one per line, or one per blank-line separated block.
Messages that were already stored are reported as duplicates and skipped.

Examples:
  # Ingest an SMS export
  bizbot ingest ~/Downloads/mpesa.txt

  # Ingest from stdin
  cat messages.txt | bizbot ingest`,
		RunE: runIngest,
	}

	cmd.Flags().Bool("strict", false, "treat a missing transaction code as invalid")
	cmd.Flags().BoolP("quiet", "q", false, "do not show a progress bar")
	cmd.Flags().BoolP("verbose", "v", false, "list rejected messages")
	cmd.Flags().Bool("no-checkpoint", false, "do not checkpoint the ledger before storing")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")
	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	messages, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return common.NewUserError("no messages found", common.ErrNoInput)
	}

	ctx := cmd.Context()
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	slog.Info("Ingesting M-PESA messages", "count", len(messages), "database", store.Path())
	autoCheckpoint(cmd, store, "ingest")

	var progress ingest.ProgressFunc
	if !quiet {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(messages), "Storing messages")
		progress = func(done, _ int) { _ = bar.Set(done) }
	}

	result, err := newIngestService(cfg, store, strict).ProcessMessages(ctx, messages, progress)
	if err != nil {
		return fmt.Errorf("ingest stopped after %d messages: %w", result.Total(), err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, cli.RenderBox("Ingest Summary", ingestSummary(result)))

	if verbose && len(result.Rejected) > 0 {
		rows := make([][]string, 0, len(result.Rejected))
		for _, r := range result.Rejected {
			rows = append(rows, []string{fmt.Sprint(r.Index + 1), truncate(r.Message, 50), r.Err.Error()})
		}
		_, _ = fmt.Fprintln(out, cli.RenderTable([]string{"#", "Message", "Reason"}, rows))
	}

	return nil
}

func ingestSummary(result ingest.BatchResult) string {
	lines := []string{
		cli.FormatSuccess(fmt.Sprintf("%d stored", len(result.Accepted))),
	}
	if n := len(result.Duplicates); n > 0 {
		lines = append(lines, cli.FormatInfo(fmt.Sprintf("%d already stored", n)))
	}
	if n := len(result.Rejected); n > 0 {
		lines = append(lines, cli.FormatWarning(fmt.Sprintf("%d could not be parsed", n)))
	}
	return strings.Join(lines, "\n")
}
