package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/cli"
	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/engine"
)

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast METRIC",
		Short: "Project a stored metric series forward",
		Long: `Fit a linear trend to an imported metric series and project it 30, 90 and
--horizon days ahead. Anomalous points, the centered moving average and the
overall growth rate are reported alongside.`,
		Args: cobra.ExactArgs(1),
		RunE: runForecast,
	}

	cmd.Flags().Int("horizon", 30, "Days ahead to project")
	_ = viper.BindPFlag("forecast.horizon", cmd.Flags().Lookup("horizon"))

	return cmd
}

func runForecast(cmd *cobra.Command, args []string) error {
	horizon := viper.GetInt("forecast.horizon")
	if horizon <= 0 {
		return fmt.Errorf("%w: --horizon must be positive", common.ErrInvalidInput)
	}

	return withEngine(cmd.Context(), func(eng *engine.Engine) error {
		f, err := eng.Forecast(cmd.Context(), args[0], horizon)
		if err != nil {
			return err
		}
		return render(cmd, f, func(w io.Writer) error {
			return cli.RenderForecast(w, f)
		})
	})
}
