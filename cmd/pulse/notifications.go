package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/cli"
	"github.com/Veraticus/pulse/internal/engine"
	"github.com/Veraticus/pulse/internal/prioritize"
	"github.com/Veraticus/pulse/internal/tui"
	"github.com/Veraticus/pulse/internal/tui/themes"
)

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"n"},
		Short:   "List and manage prioritized notifications",
		Long: `Notifications are ranked by category, age and follow-up action.
Use --owner to scope every subcommand to one recipient.`,
	}

	cmd.AddCommand(notificationsListCmd())
	cmd.AddCommand(notificationsCountsCmd())
	cmd.AddCommand(notificationsReadCmd())
	cmd.AddCommand(notificationsReadAllCmd())
	cmd.AddCommand(notificationsDeleteCmd())
	cmd.AddCommand(notificationsWatchCmd())

	return cmd
}

func notificationsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the ranked notification feed",
		Args:  cobra.NoArgs,
		RunE:  runNotificationsList,
	}

	cmd.Flags().StringP("category", "c", "", "Only show one category")
	cmd.Flags().BoolP("unread", "u", false, "Only show unread notifications")
	cmd.Flags().Bool("urgent", false, "Only show urgent notifications")
	cmd.Flags().IntP("limit", "n", 0, "Show at most this many notifications (0 for all)")

	_ = viper.BindPFlag("notifications.category", cmd.Flags().Lookup("category"))
	_ = viper.BindPFlag("notifications.unread", cmd.Flags().Lookup("unread"))
	_ = viper.BindPFlag("notifications.urgent", cmd.Flags().Lookup("urgent"))
	_ = viper.BindPFlag("notifications.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func listFilter() (prioritize.Filter, error) {
	category, err := parseCategory(viper.GetString("notifications.category"))
	if err != nil {
		return prioritize.Filter{}, err
	}
	limit := viper.GetInt("notifications.limit")
	if limit < 0 {
		limit = 0
	}
	return prioritize.Filter{
		Category:   category,
		UnreadOnly: viper.GetBool("notifications.unread"),
		UrgentOnly: viper.GetBool("notifications.urgent"),
		Limit:      limit,
	}, nil
}

func runNotificationsList(cmd *cobra.Command, _ []string) error {
	filter, err := listFilter()
	if err != nil {
		return err
	}

	return withEngine(cmd.Context(), func(eng *engine.Engine) error {
		feed, err := eng.Feed(cmd.Context(), owner(), filter)
		if err != nil {
			return fmt.Errorf("failed to load notifications: %w", err)
		}
		return render(cmd, feed, func(w io.Writer) error {
			return cli.RenderFeed(w, feed, time.Now())
		})
	})
}

func notificationsCountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show total, unread, urgent and per-category counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd.Context(), func(eng *engine.Engine) error {
				counts, err := eng.Counts(cmd.Context(), owner())
				if err != nil {
					return fmt.Errorf("failed to count notifications: %w", err)
				}
				return render(cmd, counts, func(w io.Writer) error {
					return cli.RenderCounts(w, counts)
				})
			})
		},
	}
}

func notificationsReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read ID...",
		Short: "Mark notifications as read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(eng *engine.Engine) error {
				for _, id := range args {
					if err := eng.MarkRead(cmd.Context(), id); err != nil {
						return fmt.Errorf("failed to mark %s read: %w", id, err)
					}
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Marked %d notifications read", len(args))))
				return err
			})
		},
	}
}

func notificationsReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every unread notification of the owner as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(cmd.Context(), func(eng *engine.Engine) error {
				n, err := eng.MarkAllRead(cmd.Context(), owner())
				if err != nil {
					return fmt.Errorf("failed to mark notifications read: %w", err)
				}
				msg := cli.FormatSuccess(fmt.Sprintf("Marked %d notifications read", n))
				if n == 0 {
					msg = cli.FormatInfo("Nothing unread")
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
				return err
			})
		},
	}
}

func notificationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(eng *engine.Engine) error {
				if err := eng.DeleteNotification(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete %s: %w", args[0], err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+args[0]))
				return err
			})
		},
	}
}

func notificationsWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the interactive notification center",
		Long: `Open a full-screen notification center with all, urgent and unread views.
Press r to mark the selected notification read, R to mark everything read and ? for help.`,
		Args: cobra.NoArgs,
		RunE: runNotificationsWatch,
	}

	cmd.Flags().Duration("refresh", 30*time.Second, "Reload interval (0 disables auto refresh)")
	cmd.Flags().String("theme", "default", "Color theme (default, catppuccin-mocha)")

	_ = viper.BindPFlag("watch.refresh", cmd.Flags().Lookup("refresh"))
	_ = viper.BindPFlag("watch.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runNotificationsWatch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx = handler.HandleInterrupts(ctx, "Watch", "")

	return withEngine(ctx, func(eng *engine.Engine) error {
		return tui.Run(ctx,
			tui.WithSource(eng),
			tui.WithOwner(owner()),
			tui.WithTheme(themes.GetTheme(viper.GetString("watch.theme"))),
			tui.WithRefreshInterval(viper.GetDuration("watch.refresh")),
		)
	})
}
