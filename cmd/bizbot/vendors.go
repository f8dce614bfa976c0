package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/decipher-hub/BizBot-ke/internal/cli"
	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
)

func vendorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vendors",
		Aliases: []string{"vendor"},
		Short:   "Manage remembered counter-party categories",
		Long: `Vendor rules remember the category of a counter-party, identified by its
paybill or till number, name or phone number. They are created by
"transactions set-category" and take precedence over the built-in patterns.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List vendor rules, most used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vendors, err := store.GetAllVendors(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(vendors) == 0 {
				_, _ = fmt.Fprintln(out, cli.FormatInfo("No vendor rules yet"))
				return nil
			}

			rows := make([][]string, 0, len(vendors))
			for _, v := range vendors {
				rows = append(rows, []string{v.Name, v.Category, string(v.Source), fmt.Sprint(v.UseCount)})
			}
			_, _ = fmt.Fprintln(out, cli.RenderTable([]string{"VENDOR", "CATEGORY", "SOURCE", "USES"}, rows))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <vendor> <category>",
		Short: "Remember a category for a paybill number, name or phone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToUpper(strings.Join(strings.Fields(args[0]), " "))
			category := args[1]
			if !model.IsKnownCategory(category) {
				return common.NewUserError(fmt.Sprintf("unknown category %q", category), common.ErrInvalidConfig)
			}

			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveVendor(ctx, &model.Vendor{Name: name, Category: category, Source: model.VendorManual}); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s will be categorized as %s", name, category)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <vendor>",
		Short: "Forget a vendor rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteVendor(ctx, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("no vendor rule for %s", args[0]), err)
				}
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted vendor rule "+args[0]))
			return nil
		},
	})

	return cmd
}
