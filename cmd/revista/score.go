package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abrezinsky/revista/internal/schema"
	"github.com/abrezinsky/revista/internal/services"
	"github.com/abrezinsky/revista/pkg/registry"
	"github.com/abrezinsky/revista/pkg/scoring"
)

type scoreFlags struct {
	schemaPath   string
	catalogPath  string
	format       string
	failOnReject bool
}

func newScoreCmd() *cobra.Command {
	f := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score [answers.json]",
		Short: "Score an answer set offline and print its classification",
		Long: `Reads a JSON object of answers keyed by field (from a file, or stdin when the
argument is "-" or missing) and scores it against the schema and catalog.

Without --catalog the built-in sample catalog is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runScore(cmd.InOrStdin(), cmd.OutOrStdout(), path, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.schemaPath, "schema", "", "Inspection schema YAML (embedded default if not set)")
	flags.StringVar(&f.catalogPath, "catalog", "", `Catalog JSON as served by the registry ({"characteristics": [...]})`)
	flags.StringVar(&f.format, "format", "text", "Output format: text or json")
	flags.BoolVar(&f.failOnReject, "fail-on-reject", false, "Exit with status 3 when the vehicle is rejected")

	return cmd
}

func runScore(stdin io.Reader, out io.Writer, path string, f *scoreFlags) error {
	if f.format != "text" && f.format != "json" {
		return exitError(2, "unknown format %q (want text or json)", f.format)
	}

	file, err := schema.Load(f.schemaPath)
	if err != nil {
		return exitError(2, "failed to load schema: %v", err)
	}

	chars := registry.DefaultMockCharacteristics()
	if f.catalogPath != "" {
		data, err := os.ReadFile(f.catalogPath)
		if err != nil {
			return exitError(2, "failed to read catalog: %v", err)
		}
		var catalog registry.CatalogResponse
		if err := json.Unmarshal(data, &catalog); err != nil {
			return exitError(2, "failed to parse catalog: %v", err)
		}
		chars = catalog.Characteristics
	}
	scored, err := services.ScoredFromRegistry(chars)
	if err != nil {
		return exitError(2, "invalid catalog: %v", err)
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return exitError(2, "failed to read answers: %v", err)
	}
	var answers scoring.AnswerSet
	if err := json.Unmarshal(data, &answers); err != nil {
		return exitError(2, "failed to parse answers: %v", err)
	}

	sc := file.With(scored)
	if err := sc.Validate(); err != nil {
		return exitError(2, "invalid schema: %v", err)
	}
	result := sc.Score(answers)

	if f.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		writeResult(out, sc, result)
	}

	if f.failOnReject && result.Rejected {
		return exitError(3, "vehicle rejected")
	}
	return nil
}

// writeResult prints a human readable summary of a scoring result
func writeResult(out io.Writer, sc scoring.Schema, r scoring.Result) {
	fmt.Fprintf(out, "Clasificación: %s (%s)\n", r.Classification.Label(), r.Classification)
	fmt.Fprintf(out, "Puntaje:       %d/%d (%.0f%%)\n", r.Score, r.MaxScore, r.Normalized()*100)

	if len(r.FailedChecks) > 0 {
		labels := make(map[string]string, len(sc.Essential))
		for _, c := range sc.Essential {
			labels[c.Key] = c.Label
		}
		fmt.Fprintln(out, "Revisión esencial no aprobada:")
		for _, key := range r.FailedChecks {
			fmt.Fprintf(out, "  - %s\n", labels[key])
		}
	}
	if len(r.Unanswered) > 0 {
		fmt.Fprintf(out, "Sin responder: %s\n", strings.Join(r.Unanswered, ", "))
	}
}
