// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pipestore/pipectl/internal/config"
	"github.com/pipestore/pipectl/internal/publish"
	"github.com/pipestore/pipectl/pkg/types"
)

type publishFlags struct {
	name    string
	dir     string
	version string
}

// newPublishCommand creates the `pipectl publish` command.
func newPublishCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Package the project and publish it to the store",
		Long: `Package the project and publish it to the store.

The project directory must contain a package.json with "name" and "version"
and a README.md, which becomes the published description. Projects with a
next.config file are packaged from their build output (.next) only; all other
projects are packaged whole, honoring .gitignore.

The temporary zip archive is written to the project directory and removed
when the command finishes, whether it succeeds or not.`,
		Example: `  pipectl publish --name my-pipe
  pipectl publish --name my-pipe --dir ./pipes/my-pipe --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, app, root, flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "name to publish the pipe under (required)")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "project directory (default is the working directory)")
	cmd.Flags().StringVar(&flags.version, "version", "", "override the version from package.json")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runPublish(cmd *cobra.Command, app *App, root *rootFlags, flags *publishFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := app.loadConfig(ctx, root.configPath)
	if err != nil {
		return renderFailure(cmd, app.stderr, publishFailureTitle(err), err, config.ColorSchemeAuto, root.verbose)
	}

	verbose := root.verbose || cfg.UI.Verbose
	logger := app.newLogger(verbose)
	installSlogDefault(logger)

	svc := app.NewPublisher(app.Credentials, cfg, logger)
	result, err := svc.Publish(ctx, publish.Request{
		ProjectDir: types.FilesystemPath(flags.dir),
		Name:       flags.name,
		Version:    flags.version,
		Verbose:    verbose,
	})
	if err != nil {
		return renderFailure(cmd, app.stderr, publishFailureTitle(err), err, cfg.UI.ColorScheme, verbose)
	}

	printPublishSuccess(app.stdout, result)
	return nil
}

func printPublishSuccess(w io.Writer, result publish.Result) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s pipe published successfully!\n", SuccessStyle.Render("✓"))
	fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("name:"), result.Name)
	if result.PackageName != "" {
		fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("package:"), result.PackageName)
	}
	fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render("version:"), result.Version)
	fmt.Fprintf(w, "  %s %.2f KB\n", CmdStyle.Render("size:"), float64(result.SizeBytes)/1024)
	if result.ServerMessage != "" {
		fmt.Fprintf(w, "\n%s\n", SubtitleStyle.Render(result.ServerMessage))
	}
}

func publishFailureTitle(err error) string {
	return fmt.Sprintf("publish failed (%s)", publish.Classify(err))
}

// renderFailure prints the styled failure line with its catalog help page
// and returns the ExitError that carries exit code 1 out of fang. The
// ExitError has no message, so fang's handler prints nothing more.
func renderFailure(cmd *cobra.Command, stderr io.Writer, title string, err error, scheme config.ColorScheme, verbose bool) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	styled := fmt.Sprintf("%s %s\n",
		ErrorStyle.Render("✗ "+title+":"),
		formatErrorForDisplay(err, verbose))
	renderServiceError(stderr, newServiceError(err, issueForError(err), styled), glamourStyle(scheme))

	return &ExitError{Code: types.ExitFailure}
}

// glamourStyle maps a color scheme onto a glamour standard style name.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
