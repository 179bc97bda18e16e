// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipestore/pipectl/internal/config"
	"github.com/pipestore/pipectl/internal/credential"
	"github.com/pipestore/pipectl/internal/issue"
)

// newConfigCommand creates the `pipectl config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, root *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pipectl configuration",
		Long: `Manage pipectl configuration.

Configuration is stored in:
  - Linux: ~/.config/pipectl/config.cue
  - macOS: ~/Library/Application Support/pipectl/config.cue
  - Windows: %APPDATA%\pipectl\config.cue

Every key can also be set through the environment, e.g. PIPECTL_API_BASE_URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, root.configPath)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app.stdout)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app.stdout)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, configPath string) error {
	cfg, err := app.loadConfig(ctx, configPath)
	if err != nil {
		if rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("dark"); renderErr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return err
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	switch {
	case configPath != "":
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), configPath)
	default:
		if cfgPath, pathErr := config.FilePath(); pathErr == nil && fileExistsCheck(cfgPath) {
			fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("api"))
	fmt.Fprintf(w, "  base_url: %s\n", valueStyle.Render(cfg.API.BaseURL))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.API.Timeout.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("upload"))
	fmt.Fprintf(w, "  max_attempts: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Upload.MaxAttempts)))
	fmt.Fprintf(w, "  initial_backoff: %s\n", valueStyle.Render(cfg.Upload.InitialBackoff.String()))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.Upload.Timeout.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("publish"))
	fmt.Fprintf(w, "  max_archive_size: %s\n", valueStyle.Render(cfg.Publish.MaxArchiveSize.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig(w io.Writer) error {
	cfgPath, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(w, "%s Configuration file at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(w io.Writer) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.FilePath()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", cfgPath)
	fmt.Fprintf(w, "Credentials file: %s\n", credential.NewChainStore(cfgDir).FilePath())

	return nil
}

// fileExistsCheck checks if a file exists at the given path.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
