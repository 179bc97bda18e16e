// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pipestore/pipectl/internal/config"
	"github.com/pipestore/pipectl/internal/credential"
)

// newLoginCommand creates the `pipectl login` command.
func newLoginCommand(app *App) *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the API key used to publish",
		Long: `Store the API key used to publish.

The key is saved in the system keyring. When no keyring is available it is
written to credentials.toml in the configuration directory, readable only by
the current user. The ` + credential.EnvAPIKey + ` environment variable, when set,
takes precedence over both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(apiKey) == "" {
				return renderFailure(cmd, app.stderr, "login failed", credential.ErrEmptyAPIKey, config.ColorSchemeAuto, false)
			}

			source, err := app.Credentials.Save(cmd.Context(), apiKey)
			if err != nil {
				return renderFailure(cmd, app.stderr, "login failed", fmt.Errorf("failed to save API key: %w", err), config.ColorSchemeAuto, false)
			}

			fmt.Fprintf(app.stdout, "%s Logged in (API key stored in %s)\n", SuccessStyle.Render("✓"), source)
			if source == credential.SourceFile {
				fmt.Fprintf(app.stderr, "%s no system keyring available; the key is stored in %s in the config directory\n",
					WarningStyle.Render("!"), credential.FileName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key issued by the store (required)")
	_ = cmd.MarkFlagRequired("api-key")

	return cmd
}

// newLogoutCommand creates the `pipectl logout` command.
func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Credentials.Delete(cmd.Context()); err != nil {
				return renderFailure(cmd, app.stderr, "logout failed", fmt.Errorf("failed to remove API key: %w", err), config.ColorSchemeAuto, false)
			}
			fmt.Fprintf(app.stdout, "%s Logged out\n", SuccessStyle.Render("✓"))
			return nil
		},
	}
}
