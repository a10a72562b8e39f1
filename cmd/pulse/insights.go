package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/cli"
	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/config"
	"github.com/Veraticus/pulse/internal/digest"
	"github.com/Veraticus/pulse/internal/engine"
	"github.com/Veraticus/pulse/internal/llm"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/sheets"
)

type analysisOutput struct {
	Provider   string                     `json:"provider"`
	Analysis   string                     `json:"analysis"`
	Insights   []model.PerformanceInsight `json:"insights"`
	Confidence float64                    `json:"confidence"`
}

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Generate performance insights for the team",
		Long: `Run the insight checks (overload, skill gaps, completion, overdue tasks,
budgets, attendance, strengths and top performers) against the stored team.

  --ai       ask the configured AI provider to interpret the results
  --sheets   export insights and the ranked feed to Google Sheets
  --digest   write an email digest of insights and urgent notifications`,
		Args: cobra.NoArgs,
		RunE: runInsights,
	}

	cmd.Flags().Bool("ai", false, "Add an AI analysis of the insights")
	cmd.Flags().Bool("sheets", false, "Export insights and the notification feed to Google Sheets")
	cmd.Flags().String("digest", "", "Write an RFC 5322 digest message to this file (- for stdout)")
	cmd.Flags().StringSlice("to", nil, "Digest recipients (default: digest.to from config)")

	_ = viper.BindPFlag("insights.ai", cmd.Flags().Lookup("ai"))
	_ = viper.BindPFlag("insights.sheets", cmd.Flags().Lookup("sheets"))
	_ = viper.BindPFlag("insights.digest", cmd.Flags().Lookup("digest"))
	_ = viper.BindPFlag("insights.to", cmd.Flags().Lookup("to"))

	return cmd
}

func runInsights(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	creds := config.NewCredentials(config.NewKeyringStore())

	var opts []engine.Option
	if viper.GetBool("insights.ai") {
		advisor, err := newAdvisor(creds)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithAdvisor(advisor))
	}

	var writer *sheets.Writer
	if viper.GetBool("insights.sheets") {
		sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper(), creds)
		if err != nil {
			return common.NewUserError("Google Sheets is not configured. Run 'pulse auth sheets' or set sheets.service_account_path", err)
		}
		writer, err = sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to create sheets writer: %w", err)
		}
		opts = append(opts, engine.WithReportWriter(writer))
	}

	return withEngine(ctx, func(eng *engine.Engine) error {
		if err := showInsights(cmd, eng); err != nil {
			return err
		}

		if writer != nil {
			slog.Info("Exporting report to Google Sheets")
			if err := eng.ExportReport(ctx, owner()); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Exported to "+writer.SpreadsheetURL())); err != nil {
				return err
			}
		}

		if path := viper.GetString("insights.digest"); path != "" {
			return writeDigest(ctx, cmd, eng, path)
		}
		return nil
	}, opts...)
}

func newAdvisor(creds *config.Credentials) (*llm.Advisor, error) {
	llmCfg, err := config.LoadLLM(viper.GetViper(), creds)
	if err != nil {
		return nil, common.NewUserError("AI provider is not configured", err)
	}
	client, err := llm.NewClient(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", llmCfg.Provider, err)
	}
	slog.Debug("Using AI provider", "provider", client.Provider())
	return llm.NewAdvisor(llmCfg, client, slog.Default()), nil
}

func showInsights(cmd *cobra.Command, eng *engine.Engine) error {
	ctx := cmd.Context()
	if !viper.GetBool("insights.ai") {
		insights, err := eng.Insights(ctx)
		if err != nil {
			return err
		}
		return render(cmd, insights, func(w io.Writer) error {
			return cli.RenderInsights(w, insights)
		})
	}

	resp, insights, err := eng.Analyze(ctx)
	if err != nil {
		return err
	}
	out := analysisOutput{
		Provider:   resp.Provider,
		Analysis:   resp.Content,
		Insights:   insights,
		Confidence: resp.Confidence,
	}
	return render(cmd, out, func(w io.Writer) error {
		if err := cli.RenderInsights(w, insights); err != nil {
			return err
		}
		return cli.RenderAnalysis(w, resp)
	})
}

func writeDigest(ctx context.Context, cmd *cobra.Command, eng *engine.Engine, path string) error {
	to := viper.GetStringSlice("insights.to")
	if len(to) == 0 {
		to = viper.GetStringSlice("digest.to")
	}

	summary, err := eng.Summarize(ctx, owner())
	if err != nil {
		return err
	}
	content := digest.Content{
		GeneratedAt: summary.GeneratedAt,
		OwnerID:     summary.OwnerID,
		Insights:    summary.Insights,
		Urgent:      summary.Urgent,
		Counts:      summary.Counts,
	}
	opts := digest.Options{
		Location: time.Local,
		From:     viper.GetString("digest.from"),
		To:       to,
	}

	if path == "-" {
		return digest.Render(cmd.OutOrStdout(), content, opts)
	}

	f, err := os.Create(config.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("failed to create digest file: %w", err)
	}
	if err := digest.Render(f, content, opts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close digest file: %w", err)
	}

	_, err = fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Wrote digest %q to %s", digest.Subject(content), path)))
	return err
}
