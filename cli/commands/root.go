// Package commands implements the sqlbridge CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
)

// NewRootCommand builds the CLI command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sqlbridge",
		Short:         "Compile fluent queries into SQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCompileCommand())
	root.AddCommand(newSchemaCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sqlbridge v%s\n", sqlgen.Version)
		},
	})

	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}
