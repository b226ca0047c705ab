package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sqlbridge/sqlbridge/cli/internal/config"
	"github.com/sqlbridge/sqlbridge/query/builder"
	"github.com/sqlbridge/sqlbridge/query/sqlgen"
	"github.com/sqlbridge/sqlbridge/schema"
)

type compileFlags struct {
	schemaPath string
	provider   string
	class      string
	where      []string
	selects    []string
	includes   []string
	sorts      []string
	skip       int
	limit      int
	watch      bool
}

func newCompileCommand() *cobra.Command {
	flags := &compileFlags{}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Dry-run a query and print the SQL it would execute",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if flags.schemaPath == "" {
				flags.schemaPath = cfg.SchemaPath
			}
			if flags.provider == "" {
				flags.provider = cfg.Provider
			}
			if flags.class == "" {
				return fmt.Errorf("--class is required")
			}

			if err := runCompile(cmd, flags); err != nil {
				return err
			}
			if flags.watch {
				return watchCompile(cmd, flags)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.schemaPath, "schema", "", "schema description file")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "target dialect (mysql, postgres, sqlite)")
	cmd.Flags().StringVar(&flags.class, "class", "", "class to query")
	cmd.Flags().StringArrayVar(&flags.where, "where", nil, "equality constraint, key=value (repeatable)")
	cmd.Flags().StringSliceVar(&flags.selects, "select", nil, "keys to project")
	cmd.Flags().StringSliceVar(&flags.includes, "include", nil, "relations to join")
	cmd.Flags().StringSliceVar(&flags.sorts, "sort", nil, "sort keys, prefix with - for descending")
	cmd.Flags().IntVar(&flags.skip, "skip", 0, "rows to skip")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "maximum rows")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "recompile when the schema file changes")

	return cmd
}

func runCompile(cmd *cobra.Command, flags *compileFlags) error {
	reg, err := schema.LoadFile(flags.schemaPath)
	if err != nil {
		return err
	}

	q, err := builder.NewQuery(flags.class, reg)
	if err != nil {
		return err
	}

	for _, w := range flags.where {
		key, value, found := strings.Cut(w, "=")
		if !found {
			return fmt.Errorf("malformed --where %q, expected key=value", w)
		}
		q.EqualTo(key, value)
	}
	if len(flags.selects) > 0 {
		q.Select(flags.selects...)
	}
	if len(flags.includes) > 0 {
		q.Include(flags.includes...)
	}
	for _, s := range flags.sorts {
		if strings.HasPrefix(s, "-") {
			q.SortByDescending(strings.TrimPrefix(s, "-"))
		} else {
			q.SortBy(s)
		}
	}
	q.Skip(flags.skip).Limit(flags.limit)

	opts, err := q.ToQueryOptions()
	if err != nil {
		return err
	}

	dialect, err := sqlgen.NewDialect(flags.provider)
	if err != nil {
		return err
	}
	sqlText, err := sqlgen.NewGenerator(dialect).GenerateSelect(opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), color.CyanString(sqlText))
	return nil
}

// watchCompile recompiles whenever the schema file changes, until
// interrupted.
func watchCompile(cmd *cobra.Command, flags *compileFlags) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(flags.schemaPath); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("watching %s", flags.schemaPath))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := runCompile(cmd, flags); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("compile failed: %v", err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("watch error: %v", err))
		case <-cmd.Context().Done():
			return nil
		}
	}
}
