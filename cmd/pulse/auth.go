package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/cli"
	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/config"
	"github.com/Veraticus/pulse/internal/llm"
	"github.com/Veraticus/pulse/internal/sheets"
)

// maxKeyLength bounds what is read from a pipe.
const maxKeyLength = 4096

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage credentials for AI providers and Google Sheets",
		Long: `Store and remove credentials in the OS keyring. Environment variables
(OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY) always take precedence.`,
	}

	cmd.AddCommand(authSetKeyCmd())
	cmd.AddCommand(authRemoveKeyCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func parseProvider(name string) (string, error) {
	provider := strings.ToLower(strings.TrimSpace(name))
	if !llm.RequiresKey(provider) {
		return "", fmt.Errorf("%w: %q does not use an API key (expected one of %s)",
			common.ErrInvalidInput, name, strings.Join(llm.KeyedProviders(), ", "))
	}
	return provider, nil
}

func authSetKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-key PROVIDER",
		Short: "Store an AI provider API key in the OS keyring",
		Long: `Store an API key for openai, anthropic or gemini.

The key is read from --key, from stdin when it is piped, or from a masked prompt.`,
		Example: `  pulse auth set-key openai
  echo "$KEY" | pulse auth set-key anthropic`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: llm.KeyedProviders(),
		RunE:      runAuthSetKey,
	}

	cmd.Flags().String("key", "", "API key (prefer the prompt or stdin so it stays out of shell history)")

	return cmd
}

func runAuthSetKey(cmd *cobra.Command, args []string) error {
	provider, err := parseProvider(args[0])
	if err != nil {
		return err
	}

	key, _ := cmd.Flags().GetString("key")
	if key == "" {
		piped, ok, err := readPipedKey(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if ok {
			key = piped
		} else if key, err = promptKey(provider); err != nil {
			return err
		}
	}

	creds := config.NewCredentials(config.NewKeyringStore())
	if err := creds.SetAPIKey(provider, key); err != nil {
		return fmt.Errorf("failed to store %s key: %w", provider, err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Stored %s API key", provider)))
	return err
}

// readPipedKey reads a key from r unless r is an interactive terminal.
func readPipedKey(r io.Reader) (string, bool, error) {
	if f, ok := r.(*os.File); ok {
		info, err := f.Stat()
		if err != nil || info.Mode()&os.ModeCharDevice != 0 {
			return "", false, nil
		}
	}

	data, err := io.ReadAll(io.LimitReader(r, maxKeyLength))
	if err != nil {
		return "", false, fmt.Errorf("failed to read key from stdin: %w", err)
	}
	key := strings.TrimSpace(string(data))
	return key, key != "", nil
}

func promptKey(provider string) (string, error) {
	var key string
	err := huh.NewInput().
		Title(fmt.Sprintf("%s API key", provider)).
		Description(fmt.Sprintf("Stored in the OS keyring. %s overrides it when set.", config.EnvVar(provider))).
		EchoMode(huh.EchoModePassword).
		Value(&key).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("key is required")
			}
			return nil
		}).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", common.NewUserError("Canceled", err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return key, nil
}

func authRemoveKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "remove-key PROVIDER",
		Short:     "Remove a stored AI provider API key",
		Args:      cobra.ExactArgs(1),
		ValidArgs: llm.KeyedProviders(),
		RunE:      runAuthRemoveKey,
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	return cmd
}

func runAuthRemoveKey(cmd *cobra.Command, args []string) error {
	provider, err := parseProvider(args[0])
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Remove the stored %s API key?", provider)).
			Affirmative("Remove").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("failed to confirm: %w", err)
		}
		if !confirmed {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Kept "+provider+" API key"))
			return err
		}
	}

	creds := config.NewCredentials(config.NewKeyringStore())
	if err := creds.RemoveAPIKey(provider); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("No %s API key is stored", provider), err)
		}
		return fmt.Errorf("failed to remove %s key: %w", provider, err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed %s API key", provider)))
	return err
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which AI provider pulse will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := config.NewCredentials(config.NewKeyringStore())
			out := cmd.OutOrStdout()

			for _, provider := range llm.KeyedProviders() {
				state := cli.SubtleStyle.Render("not set")
				if creds.APIKey(provider) != "" {
					state = cli.SuccessStyle.Render("configured")
				}
				if _, err := fmt.Fprintf(out, "%-10s %s\n", provider, state); err != nil {
					return err
				}
			}

			llmCfg, err := config.LoadLLM(viper.GetViper(), creds)
			if err != nil {
				_, werr := fmt.Fprintln(out, cli.FormatWarning(err.Error()))
				return werr
			}
			_, err = fmt.Fprintf(out, "\n%s Active provider: %s\n", cli.RobotIcon, llmCfg.Provider)
			return err
		},
	}
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets export",
		Long: `Run the Google OAuth2 flow in your browser and store the resulting refresh
token in the OS keyring for 'pulse insights --sheets'.

Client credentials come from sheets.client_id / sheets.client_secret or the
GOOGLE_SHEETS_CLIENT_ID / GOOGLE_SHEETS_CLIENT_SECRET environment variables.`,
		Args: cobra.NoArgs,
		RunE: runAuthSheets,
	}

	cmd.Flags().Duration("timeout", 5*time.Minute, "How long to wait for the browser callback")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	clientID := firstNonEmpty(viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	clientSecret := firstNonEmpty(viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	if clientID == "" || clientSecret == "" {
		return common.NewUserError("Google OAuth2 client credentials are missing. Set sheets.client_id and sheets.client_secret",
			common.ErrMissingConfig)
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	errOut := cmd.ErrOrStderr()
	token, err := sheets.Authorize(cmd.Context(), sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Timeout:      timeout,
	}, func(authURL string) {
		fmt.Fprintln(errOut, cli.FormatInfo("Open this URL in your browser to authorize pulse:"))
		fmt.Fprintln(errOut, "\n  "+authURL+"\n")
	})
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if token.RefreshToken == "" {
		return common.NewUserError("Google did not return a refresh token. Revoke pulse's access and try again", common.ErrInvalidInput)
	}

	creds := config.NewCredentials(config.NewKeyringStore())
	if err := creds.SetSheetsRefreshToken(token.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authorized"))
	return err
}

func firstNonEmpty(values ...string) string {
	if i := slices.IndexFunc(values, func(v string) bool { return v != "" }); i >= 0 {
		return values[i]
	}
	return ""
}
