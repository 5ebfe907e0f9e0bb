package commands

import (
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/buildinfo"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	dir   string
	actor string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Small-business payroll and financial statements",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "project directory containing "+configName)
	rootCmd.PersistentFlags().StringVar(&opts.actor, "actor", defaultActor(), "name recorded in the audit log")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newEmployeeCommand(opts),
		newContractorCommand(opts),
		newPayrollCommand(opts),
		newLedgerCommand(opts),
		newReportCommand(opts),
		newTaskCommand(opts),
		newDocumentCommand(opts),
	)

	return rootCmd
}
