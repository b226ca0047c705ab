package commands

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sqlbridge/sqlbridge/cli/internal/config"
	"github.com/sqlbridge/sqlbridge/schema"
)

func newSchemaCommand() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the registered classes of a schema file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if schemaPath == "" {
				schemaPath = cfg.SchemaPath
			}

			reg, err := schema.LoadFile(schemaPath)
			if err != nil {
				return err
			}

			classes := reg.Classes()
			sort.Strings(classes)

			rows := pterm.TableData{{"Class", "Table", "Scalars", "Relations"}}
			for _, class := range classes {
				desc, err := reg.Describe(class)
				if err != nil {
					return err
				}
				aliases := make([]string, 0, len(desc.Relations))
				for _, r := range desc.Relations {
					aliases = append(aliases, r.Alias)
				}
				rows = append(rows, []string{
					desc.Class,
					desc.Table,
					fmt.Sprintf("%d", len(desc.Scalars)),
					fmt.Sprintf("%v", aliases),
				})
			}

			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema description file")
	return cmd
}
