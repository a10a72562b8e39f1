package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/config"
	"github.com/Veraticus/pulse/internal/mcpserver"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the scoring tools over the Model Context Protocol (stdio)",
		Long: `Start an MCP server on stdin/stdout exposing notification prioritization,
assignee recommendation, task risk, insight generation and forecasting as tools.

The tools are stateless: every call carries the records it scores. Logs go to
stderr so they never corrupt the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadScoring(viper.GetViper())
			if err != nil {
				return common.NewUserError("Invalid scoring configuration", err)
			}
			slog.Info("Starting MCP server", "version", version)
			return mcpserver.New(cfg, version, time.Now, slog.Default()).ServeStdio()
		},
	}
}
