package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/decipher-hub/BizBot-ke/internal/cli"
	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [message]",
		Short: "Parse M-PESA messages without storing them",
		Long: `Parse one or more M-PESA confirmation messages and show what was extracted.

Examples:
  # Parse a single message
  bizbot parse "MPESA received Ksh1,500.00 from 254712345678 JOHN DOE ..."

  # Parse every message in an export, as JSON
  bizbot parse --file messages.txt --output json

  # Parse from stdin
  pbpaste | bizbot parse`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().StringSliceP("file", "f", nil, "files of messages to parse (- for stdin)")
	cmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	cmd.Flags().Bool("strict", false, "treat a missing transaction code as invalid")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	files, _ := cmd.Flags().GetStringSlice("file")
	output, _ := cmd.Flags().GetString("output")
	strict, _ := cmd.Flags().GetBool("strict")

	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	var messages []string
	if len(args) == 1 {
		messages = []string{args[0]}
	} else {
		messages, err = readInput(files, cmd.InOrStdin())
		if err != nil {
			return err
		}
	}
	if len(messages) == 0 {
		return common.NewUserError("nothing to parse", common.ErrNoInput)
	}

	outcomes, err := newParser(cfg, strict).ParseAll(cmd.Context(), messages)
	if err != nil {
		return err
	}

	return writeOutcomes(cmd.OutOrStdout(), outcomes, output)
}

func writeOutcomes(w io.Writer, outcomes []model.ParseOutcome, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outcomes); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for i, outcome := range outcomes {
			title := fmt.Sprintf("Message %d of %d", i+1, len(outcomes))
			if _, err := fmt.Fprintln(w, cli.RenderBox(title, cli.RenderOutcome(outcome))); err != nil {
				return err
			}
		}
		return nil
	default:
		return common.NewUserError(fmt.Sprintf("unknown output format %q", format), common.ErrInvalidConfig)
	}
}
