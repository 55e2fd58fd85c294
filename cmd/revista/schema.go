package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/revista/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and validate inspection schema files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the embedded default schema, a starting point for custom schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(schema.DefaultYAML())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a schema file and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaCheck(cmd.OutOrStdout(), args[0])
		},
	})

	return cmd
}

func runSchemaCheck(out io.Writer, path string) error {
	f, err := schema.Load(path)
	if err != nil {
		return exitError(2, "%s: %v", path, err)
	}
	fmt.Fprintf(out, "%s v%d: OK\n", f.Name, f.Version)
	fmt.Fprintf(out, "  essential checks: %d\n", len(f.Essential))
	for _, c := range f.Essential {
		fmt.Fprintf(out, "    %-24s %s (%s)\n", c.Key, c.Label, c.Kind)
	}
	fmt.Fprintf(out, "  banding: select from %d, prime from %d\n", f.Banding.SelectFrom, f.Banding.PrimeFrom)
	return nil
}
