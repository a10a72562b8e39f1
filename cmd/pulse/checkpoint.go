package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Veraticus/pulse/internal/cli"
	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/storage"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Save and restore copies of the pulse database",
		Long: `Checkpoints are full copies of the database kept in a "checkpoints" directory
next to it. 'pulse import' takes one automatically; the newest five automatic
checkpoints are kept.`,
	}

	cmd.AddCommand(checkpointCreateCmd())
	cmd.AddCommand(checkpointListCmd())
	cmd.AddCommand(checkpointRestoreCmd())
	cmd.AddCommand(checkpointDeleteCmd())

	return cmd
}

// withCheckpoints opens storage and runs fn with its checkpoint manager.
func withCheckpoints(ctx context.Context, fn func(*storage.CheckpointManager) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()

	manager, err := store.Checkpoints()
	if err != nil {
		return err
	}
	return fn(manager)
}

func autoCheckpoint(ctx context.Context, store *storage.SQLiteStorage, operation string) error {
	manager, err := store.Checkpoints()
	if errors.Is(err, storage.ErrNoCheckpoints) {
		return nil
	}
	if err != nil {
		return err
	}
	info, err := manager.AutoCheckpoint(ctx, operation)
	if err != nil {
		return err
	}
	slog.Debug("Saved checkpoint", "id", info.ID, "records", info.Records())
	return nil
}

func checkpointCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [TAG]",
		Short: "Save a checkpoint of the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := ""
			if len(args) == 1 {
				tag = args[0]
			}
			description, _ := cmd.Flags().GetString("description")

			return withCheckpoints(cmd.Context(), func(m *storage.CheckpointManager) error {
				info, err := m.Create(cmd.Context(), tag, description)
				if err != nil {
					return fmt.Errorf("failed to create checkpoint: %w", err)
				}
				return render(cmd, info, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Saved checkpoint %s (%d records, %s)",
						info.ID, info.Records(), humanize.Bytes(uint64(info.FileSize)))))
					return err
				})
			})
		},
	}

	cmd.Flags().StringP("description", "d", "", "What this checkpoint is for")

	return cmd
}

func checkpointListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checkpoints, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd.Context(), func(m *storage.CheckpointManager) error {
				checkpoints, err := m.List(cmd.Context())
				if err != nil {
					return err
				}
				return render(cmd, checkpoints, func(w io.Writer) error {
					return renderCheckpoints(w, checkpoints, time.Now())
				})
			})
		},
	}
}

func renderCheckpoints(w io.Writer, checkpoints []storage.CheckpointInfo, now time.Time) error {
	if len(checkpoints) == 0 {
		_, err := fmt.Fprintln(w, cli.InfoStyle.Render("No checkpoints."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, cli.TableHeaderStyle.Render("ID")+"\t"+cli.TableHeaderStyle.Render("CREATED")+"\t"+
		cli.TableHeaderStyle.Render("RECORDS")+"\t"+cli.TableHeaderStyle.Render("SIZE")+"\t"+cli.TableHeaderStyle.Render("DESCRIPTION"))
	for _, cp := range checkpoints {
		id := cp.ID
		if cp.IsAuto {
			id += " (auto)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, cli.Age(cp.CreatedAt, now),
			strconv.Itoa(cp.Records()), humanize.Bytes(uint64(cp.FileSize)), cp.Description)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table writer: %w", err)
	}
	return nil
}

func checkpointRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID",
		Short: "Replace the database with a checkpoint",
		Long: `Replace the current database with a checkpoint. A checkpoint of the current
state is saved first, so a restore can itself be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpoints(cmd.Context(), func(m *storage.CheckpointManager) error {
				if _, err := m.Get(cmd.Context(), args[0]); err != nil {
					if errors.Is(err, storage.ErrCheckpointNotFound) {
						return common.NewUserError(fmt.Sprintf("No checkpoint named %q. Run 'pulse checkpoint list'", args[0]), err)
					}
					return err
				}
				if _, err := m.AutoCheckpoint(cmd.Context(), "restore"); err != nil {
					return err
				}
				if err := m.Restore(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to restore %s: %w", args[0], err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Restored checkpoint "+args[0]))
				return err
			})
		},
	}
}

func checkpointDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpoints(cmd.Context(), func(m *storage.CheckpointManager) error {
				if err := m.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete %s: %w", args[0], err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted checkpoint "+args[0]))
				return err
			})
		},
	}
}
