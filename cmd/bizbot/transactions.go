package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/decipher-hub/BizBot-ke/internal/cli"
	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn", "tx"},
		Short:   "Browse and manage stored transactions",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(summaryCmd())
	cmd.AddCommand(setCategoryCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "only transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "only transactions on or before this date (YYYY-MM-DD)")
	cmd.Flags().String("type", "", "only transactions of this type")
	cmd.Flags().String("category", "", "only transactions in this category")
	cmd.Flags().String("search", "", "match counter-party names, codes and account numbers")
}

// filterFromFlags builds a storage filter from the shared filter flags.
func filterFromFlags(cmd *cobra.Command) (service.TransactionFilter, error) {
	var filter service.TransactionFilter

	cfg, err := currentConfig()
	if err != nil {
		return filter, err
	}
	loc := location(cfg)

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	if filter.Start, err = parseDay(from, loc, false); err != nil {
		return filter, err
	}
	if filter.End, err = parseDay(to, loc, true); err != nil {
		return filter, err
	}

	if typ, _ := cmd.Flags().GetString("type"); typ != "" {
		filter.Type, err = model.ParseTransactionType(typ)
		if err != nil {
			return filter, common.NewUserError(err.Error(), common.ErrInvalidConfig)
		}
	}

	filter.Category, _ = cmd.Flags().GetString("category")
	filter.Search, _ = cmd.Flags().GetString("search")

	return filter, nil
}

func listTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transactions, newest first",
		Long: `List stored transactions, newest first.

Examples:
  # Everything received in March
  bizbot transactions list --type received --from 2024-03-01 --to 2024-03-31

  # Payments to a supplier
  bizbot transactions list --search NAIVAS`,
		Args: cobra.NoArgs,
		RunE: runListTransactions,
	}

	addFilterFlags(cmd)
	cmd.Flags().IntP("limit", "n", 50, "maximum number of transactions to show (0 for all)")
	cmd.Flags().Int("offset", 0, "number of transactions to skip")
	cmd.Flags().Bool("json", false, "print transactions as JSON")

	return cmd
}

func runListTransactions(cmd *cobra.Command, _ []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	filter.Offset, _ = cmd.Flags().GetInt("offset")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	txns, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(txns)
	}

	if len(txns) == 0 {
		_, _ = fmt.Fprintln(out, cli.FormatInfo("No transactions found"))
		return nil
	}

	total, err := store.CountTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}

	_, _ = fmt.Fprintln(out, cli.RenderTransactions(txns))
	_, _ = fmt.Fprintf(out, "Showing %d of %d transactions\n", len(txns), total)
	return nil
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals by type and by category",
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}

	cmd.Flags().String("from", "", "only transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "only transactions on or before this date (YYYY-MM-DD)")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := currentConfig()
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	// Without bounds the summary covers every stored transaction.
	start, end := time.Time{}, time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	fromDay, err := parseDay(from, location(cfg), false)
	if err != nil {
		return err
	}
	if fromDay != nil {
		start = *fromDay
	}
	toDay, err := parseDay(to, location(cfg), true)
	if err != nil {
		return err
	}
	if toDay != nil {
		end = *toDay
	}
	if end.Before(start) {
		return common.NewUserError("--to is before --from", common.ErrInvalidConfig)
	}

	ctx := cmd.Context()
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	byType, err := store.GetTypeSummary(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to summarize by type: %w", err)
	}
	byCategory, err := store.GetCategorySummary(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to summarize by category: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(byType) == 0 {
		_, _ = fmt.Fprintln(out, cli.FormatInfo("No transactions found"))
		return nil
	}

	_, _ = fmt.Fprintln(out, cli.FormatTitle(cli.ChartIcon+" By type"))
	_, _ = fmt.Fprintln(out, cli.RenderTypeSummary(byType))
	_, _ = fmt.Fprintln(out, cli.FormatTitle(cli.ChartIcon+" By category"))
	_, _ = fmt.Fprintln(out, cli.RenderCategorySummary(byCategory))
	return nil
}

func setCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-category <transaction-id> <category>",
		Short: "Assign a category to a transaction by hand",
		Args:  cobra.ExactArgs(2),
		RunE:  runSetCategory,
	}

	cmd.Flags().Bool("force", false, "allow a category that is not in the default list")
	cmd.Flags().Bool("remember", true, "use this category for future transactions with the same counter-party")

	return cmd
}

func runSetCategory(cmd *cobra.Command, args []string) error {
	id, category := args[0], args[1]
	force, _ := cmd.Flags().GetBool("force")
	remember, _ := cmd.Flags().GetBool("remember")

	if !force && !model.IsKnownCategory(category) {
		return common.NewUserError(
			fmt.Sprintf("unknown category %q (use --force to create it)", category),
			common.ErrInvalidConfig)
	}

	ctx := cmd.Context()
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.UpdateTransactionCategory(ctx, id, category); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("transaction %s not found", id), err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Transaction %s categorized as %s", id, category)))

	if !remember {
		return nil
	}
	txn, err := store.GetTransactionByID(ctx, id)
	if err != nil {
		return err
	}
	key := model.VendorKey(*txn)
	if key == "" {
		return nil
	}
	if err := store.SaveVendor(ctx, &model.Vendor{Name: key, Category: category, Source: model.VendorManual}); err != nil {
		return fmt.Errorf("failed to remember vendor: %w", err)
	}
	_, _ = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Future transactions with %s will be categorized as %s", key, category)))
	return nil
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a stored transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteTransaction(ctx, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("transaction %s not found", args[0]), err)
				}
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted transaction "+args[0]))
			return nil
		},
	}
}
