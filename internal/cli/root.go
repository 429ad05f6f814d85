// Package cli wires the cobra command tree. The bare command launches the
// terminal UI; subcommands cover scripted use of the same client stack.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	do "github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/nextreadapp/nextread-client/internal/config"
	"github.com/nextreadapp/nextread-client/internal/di"
	"github.com/nextreadapp/nextread-client/internal/ui"
)

var flags config.Flags

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "nextread",
		Short: "NextRead terminal client",
		Long:  "A terminal client for the NextRead reading tracker: shelves, recommendations and the onboarding survey.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.APIURL, "api-url", "", "backend base URL")
	pf.StringVar(&flags.DataPath, "data", "", "data directory for token and cache")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flags.Environment, "env", "", "environment name")
	pf.StringVar(&flags.EnvFile, "env-file", "", "path to .env file")

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
		newShelvesCommand(),
		newRecommendCommand(),
		newSurveyCommand(),
		newStubServerCommand(),
	)
	return root
}

// container builds the DI scope for a command invocation.
func container() *do.RootScope {
	return di.NewContainer(flags)
}

func runTUI() error {
	injector := container()
	defer func() { _ = injector.Shutdown() }()

	app, err := do.Invoke[*ui.App](injector)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
