package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/decipher-hub/BizBot-ke/internal/cli"
	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/storage"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checkpoint",
		Aliases: []string{"cp"},
		Short:   "Save and restore copies of the ledger",
		Long: `Checkpoints are copies of the ledger database kept in a "checkpoints"
directory beside it. ingest and import-ofx take one automatically before
writing; the five most recent automatic checkpoints are kept.`,
	}

	create := &cobra.Command{
		Use:   "create [tag]",
		Short: "Save a checkpoint of the ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			tag := ""
			if len(args) == 1 {
				tag = args[0]
			}

			return withCheckpoints(cmd, func(cm *storage.CheckpointManager) error {
				cp, err := cm.Create(cmd.Context(), tag, description)
				if err != nil {
					if errors.Is(err, storage.ErrInvalidCheckpointTag) || errors.Is(err, storage.ErrCheckpointExists) {
						return common.NewUserError(err.Error(), err)
					}
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Created checkpoint %s (%d transactions, %d vendor rules)", cp.ID, cp.Transactions, cp.Vendors)))
				return nil
			})
		},
	}
	create.Flags().StringP("description", "m", "", "note stored with the checkpoint")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List checkpoints, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(cm *storage.CheckpointManager) error {
				checkpoints, err := cm.List(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(checkpoints) == 0 {
					_, _ = fmt.Fprintln(out, cli.FormatInfo("No checkpoints yet"))
					return nil
				}

				rows := make([][]string, 0, len(checkpoints))
				for _, cp := range checkpoints {
					rows = append(rows, []string{
						cp.ID,
						humanize.Time(cp.CreatedAt),
						fmt.Sprint(cp.Transactions),
						humanize.Bytes(uint64(cp.FileSize)), // #nosec G115 -- file sizes are non-negative
						cp.Description,
					})
				}
				_, _ = fmt.Fprintln(out, cli.RenderTable([]string{"ID", "CREATED", "TRANSACTIONS", "SIZE", "DESCRIPTION"}, rows))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the ledger with a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpoints(cmd, func(cm *storage.CheckpointManager) error {
				if err := cm.Restore(cmd.Context(), args[0]); err != nil {
					return checkpointUserError(args[0], err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Restored checkpoint "+args[0]))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpoints(cmd, func(cm *storage.CheckpointManager) error {
				if err := cm.Delete(cmd.Context(), args[0]); err != nil {
					return checkpointUserError(args[0], err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted checkpoint "+args[0]))
				return nil
			})
		},
	})

	return cmd
}

// withCheckpoints opens the ledger and runs fn with its checkpoint manager.
func withCheckpoints(cmd *cobra.Command, fn func(*storage.CheckpointManager) error) error {
	store, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cm, err := store.Checkpoints()
	if err != nil {
		if errors.Is(err, storage.ErrCheckpointInMemory) {
			return common.NewUserError("checkpoints need a database file", err)
		}
		return err
	}
	return fn(cm)
}

func checkpointUserError(id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrCheckpointNotFound):
		return common.NewUserError(fmt.Sprintf("no checkpoint named %s", id), err)
	case errors.Is(err, storage.ErrInvalidCheckpointTag):
		return common.NewUserError(fmt.Sprintf("invalid checkpoint name %q", id), err)
	case errors.Is(err, storage.ErrCheckpointCorrupted):
		return common.NewUserError(fmt.Sprintf("checkpoint %s is damaged and was not restored", id), err)
	}
	return err
}
