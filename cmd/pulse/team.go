package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/cli"
	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/engine"
	"github.com/Veraticus/pulse/internal/service"
)

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend TASK_ID",
		Short: "Rank the best employees to take on a task",
		Long: `Score every employee against the task's required skills, current workload,
completion history and availability, and show the best candidates with a
confidence, projected completion and the reasons behind each score.`,
		Args: cobra.ExactArgs(1),
		RunE: runRecommend,
	}

	cmd.Flags().IntP("top", "n", 3, "Number of candidates to show")
	_ = viper.BindPFlag("recommend.top", cmd.Flags().Lookup("top"))

	return cmd
}

func runRecommend(cmd *cobra.Command, args []string) error {
	top := viper.GetInt("recommend.top")
	if top <= 0 {
		return fmt.Errorf("%w: --top must be positive", common.ErrInvalidInput)
	}

	return withEngine(cmd.Context(), func(eng *engine.Engine) error {
		recs, err := eng.Recommend(cmd.Context(), args[0], top)
		if err != nil {
			return fmt.Errorf("failed to recommend assignees for %s: %w", args[0], err)
		}
		return render(cmd, recs, func(w io.Writer) error {
			return cli.RenderRecommendations(w, recs, time.Local)
		})
	})
}

func riskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk [TASK_ID]",
		Short: "Assess delivery risk of open tasks",
		Long: `Without arguments, list every open task riskiest first. With a task ID, show
that task's risk factors and suggested mitigations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRisk,
	}

	cmd.Flags().String("assignee", "", "Only assess tasks assigned to this employee")
	cmd.Flags().Bool("all", false, "Include completed tasks")

	_ = viper.BindPFlag("risk.assignee", cmd.Flags().Lookup("assignee"))
	_ = viper.BindPFlag("risk.all", cmd.Flags().Lookup("all"))

	return cmd
}

func runRisk(cmd *cobra.Command, args []string) error {
	return withEngine(cmd.Context(), func(eng *engine.Engine) error {
		if len(args) == 1 {
			a, err := eng.AssessTask(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to assess %s: %w", args[0], err)
			}
			return render(cmd, a, func(w io.Writer) error {
				return cli.RenderRiskDetail(w, a)
			})
		}

		assessments, err := eng.AssessRisks(cmd.Context(), service.TaskFilter{
			AssigneeID: viper.GetString("risk.assignee"),
			OpenOnly:   !viper.GetBool("risk.all"),
		})
		if err != nil {
			return fmt.Errorf("failed to assess tasks: %w", err)
		}
		return render(cmd, assessments, func(w io.Writer) error {
			return cli.RenderRisks(w, assessments)
		})
	})
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show each employee's health score and churn risk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd.Context(), func(eng *engine.Engine) error {
				risks, err := eng.TeamHealth(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to assess team health: %w", err)
				}
				return render(cmd, risks, func(w io.Writer) error {
					return cli.RenderHealth(w, risks)
				})
			})
		},
	}
}
