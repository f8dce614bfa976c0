package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/decipher-hub/BizBot-ke/internal/classification"
	"github.com/decipher-hub/BizBot-ke/internal/cli"
	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/mpesa"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern"},
		Short:   "Show the message templates and category rules",
	}

	cmd.AddCommand(messagePatternsCmd())
	cmd.AddCommand(categoryPatternsCmd())

	return cmd
}

func messagePatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "List M-PESA message templates in the order they are tried",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := mpesa.DefaultCatalog()

			var rows [][]string
			for _, tier := range []model.Tier{model.TierPrimary, model.TierAlternative} {
				for i, def := range catalog.Definitions(tier) {
					rows = append(rows, []string{string(tier), fmt.Sprint(i + 1), def.Name, string(def.Type)})
				}
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"Tier", "Order", "Template", "Type"}, rows))
			return err
		},
	}
}

func categoryPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the rules used to categorize transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patterns := classification.NewDefaultCategorizer().Patterns()

			rows := make([][]string, 0, len(patterns))
			for _, p := range patterns {
				types := "any"
				if len(p.Types) > 0 {
					names := make([]string, len(p.Types))
					for i, t := range p.Types {
						names[i] = string(t)
					}
					types = strings.Join(names, ", ")
				}
				rows = append(rows, []string{
					p.Name,
					p.Category,
					fmt.Sprint(p.Priority),
					fmt.Sprintf("%.2f", p.Confidence),
					types,
				})
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(),
				cli.RenderTable([]string{"Rule", "Category", "Priority", "Confidence", "Types"}, rows))
			return err
		},
	}
}
