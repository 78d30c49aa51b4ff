package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/credentialengine/obpublisher/internal/cmd/output"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.out)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "obpublisher",
		Short:   "Publish Open Badges to the Credential Registry",
		Version: a.version,
		Long: `obpublisher converts Open Badges badge classes into CTDL credentials,
reconciles them with what the organization already published to the
Credential Registry and saves the results.

Badge classes are read from JSON or YAML files exported by the issuing
platform. Registry access, the publishing organization and alignment
defaults come from ~/.obpublisher.yaml, .env files and OBPUB_ variables.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.ConfigFile, "config", "", "config file (default is $HOME/.obpublisher.yaml)")
	flags.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.StringVarP(&a.flags.Format, "format", "o", "", "output format: table, json, yaml")
	flags.StringVar(&a.flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringVar(&a.flags.Org, "org", "", "CTID of the organization to publish for (overrides organization.ctid)")

	rootCmd.SetVersionTemplate("obpublisher {{.Version}}\n")

	rootCmd.AddCommand(
		a.newPreviewCommand(),
		a.newStatusCommand(),
		a.newPublishCommand(),
		a.newWhoamiCommand(),
		a.newVersionCommand(),
	)
	return rootCmd
}

// setupCommand loads configuration and rebuilds the logger once flags are
// parsed.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	if _, err := output.ParseFormat(a.flags.Format); err != nil {
		return err
	}
	if err := a.loadConfig(); err != nil {
		return err
	}
	logger := NewLogger(a.config, a.flags)
	a.logger = &logger
	return nil
}

// render writes data in the selected output format.
func (a *App) render(data any) error {
	format := output.DetectFormat(a.flags.Format, a.out)
	return output.NewFormatter(format).Format(a.out, data)
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
