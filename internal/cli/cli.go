// Package cli is the command-line entrypoint of spec.md §4.10: it parses
// run parameters, wires the root Controller, and attaches either the live
// dashboard or a plain-stdin key reader depending on whether stdout is a
// terminal.
package cli

import (
	"github.com/spf13/cobra"
)

// App is the CLI application with its wired root command.
type App struct {
	rootCmd *cobra.Command

	version string
	commit  string
	date    string
}

// New creates the CLI application.
func New() *App {
	app := &App{}
	app.rootCmd = &cobra.Command{
		Use:   "sor",
		Short: "Emergency department admission/triage/treatment simulator",
		Long: `sor simulates a hospital emergency department as a concurrent
system of registration desks, a triage stage, six specialists, a patient
generator, and a director that periodically pulls a specialist away.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.rootCmd.AddCommand(newRunCmd(app))
	app.rootCmd.AddCommand(newVersionCmd(app))
	return app
}

// Execute runs the CLI.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion records build-time version information for the version command.
func (a *App) SetVersion(version, commit, date string) {
	a.version = version
	a.commit = commit
	a.date = date
}
