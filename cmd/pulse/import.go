package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/cli"
	"github.com/Veraticus/pulse/internal/config"
	"github.com/Veraticus/pulse/internal/snapshot"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a snapshot of notifications, employees, tasks and metrics",
		Long: `Import records from a YAML or JSON snapshot file into the local database.

Records are keyed by ID, so importing the same file twice updates rather than
duplicates. Metric points are appended to their series.

A checkpoint of the database is saved first; 'pulse checkpoint restore' undoes
an import.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Parse the file and report what would be imported without saving")
	cmd.Flags().Bool("no-progress", false, "Hide the progress bar")
	cmd.Flags().Bool("no-checkpoint", false, "Skip the automatic database checkpoint taken before importing")

	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("import.no_progress", cmd.Flags().Lookup("no-progress"))
	_ = viper.BindPFlag("import.no_checkpoint", cmd.Flags().Lookup("no-checkpoint"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	path := config.ExpandPath(args[0])
	f, err := snapshot.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	if viper.GetBool("import.dry_run") {
		if _, err := fmt.Fprintln(out, cli.FormatWarning("Dry run mode - not saving to database")); err != nil {
			return err
		}
		return writeImportSummary(out, snapshotCounts(f))
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()

	if !viper.GetBool("import.no_checkpoint") {
		if err := autoCheckpoint(cmd.Context(), store, "import"); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx = handler.HandleInterrupts(ctx, "Import", "Run the same import again to finish; saved records are updated in place.")

	var progress func()
	if !viper.GetBool("import.no_progress") {
		progress = cli.Ticker(cli.NewProgressBar(cmd.ErrOrStderr(), f.Len(), "Importing"))
	}

	slog.Info("Importing snapshot", "file", path, "records", f.Len())
	res, err := snapshot.Import(ctx, store, f, progress)
	if err != nil {
		if handler.WasInterrupted() {
			return fmt.Errorf("import interrupted after %d of %d records: %w", res.Total(), f.Len(), err)
		}
		return fmt.Errorf("import failed after %d of %d records: %w", res.Total(), f.Len(), err)
	}

	if _, err := fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d records from %s", res.Total(), args[0]))); err != nil {
		return err
	}
	return writeImportSummary(out, res)
}

func snapshotCounts(f *snapshot.File) snapshot.Result {
	res := snapshot.Result{
		Notifications: len(f.Notifications),
		Employees:     len(f.Employees),
		Tasks:         len(f.Tasks),
		Budgets:       len(f.Budgets),
	}
	for _, points := range f.Metrics {
		res.Metrics += len(points)
	}
	return res
}

func writeImportSummary(w io.Writer, res snapshot.Result) error {
	_, err := fmt.Fprintf(w, "  notifications: %d\n  employees:     %d\n  tasks:         %d\n  budgets:       %d\n  metric points: %d\n",
		res.Notifications, res.Employees, res.Tasks, res.Budgets, res.Metrics)
	return err
}
