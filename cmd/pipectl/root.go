// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/pipestore/pipectl/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the pipectl command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "pipectl",
		Short: "Package and publish pipes to the store",
		Long: TitleStyle.Render("pipectl") + SubtitleStyle.Render(" - Package and publish pipes to the store") + `

pipectl turns a local project into a zip archive, verifies it and uploads
it to the pipe store in three steps: request an upload slot, upload the
archive, finalize the publish.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Log in once with your API key
  2. Add a README.md and a package.json with name and version
  3. Publish from the project directory

` + SubtitleStyle.Render("Examples:") + `
  pipectl login --api-key sk_...     Store your API key
  pipectl publish --name my-pipe     Publish the current directory
  pipectl config show                Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/pipectl/config.cue)")

	rootCmd.AddCommand(newPublishCommand(app, flags))
	rootCmd.AddCommand(newLoginCommand(app))
	rootCmd.AddCommand(newLogoutCommand(app))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the resulting code.
// This is called by main.main().
func Execute() {
	os.Exit(Run())
}

// Run runs the CLI against os.Args and returns the process exit code.
func Run() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return int(exitCodeOf(err))
	}
	return execute(context.Background(), app, os.Args[1:])
}

func execute(ctx context.Context, app *App, args []string) int {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
	return int(exitCodeOf(err))
}

// handleError is the fang error handler. Failures rendered by the command
// itself arrive as a bare ExitError and are not printed again.
func handleError(w io.Writer, styles fang.Styles, err error) {
	if exitErr, ok := asExitError(err); ok && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func asExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	ok := errors.As(err, &exitErr)
	return exitErr, ok
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// installSlogDefault routes library slog output through handler for the
// rest of the process.
func installSlogDefault(handler slog.Handler) {
	slog.SetDefault(slog.New(handler))
}
