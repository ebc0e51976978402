package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passage-cli/passage/internal/domain/flowdef"
)

var validateCmd = &cobra.Command{
	Use:   "validate <flow-file>",
	Short: "Validate a flow file without running it",
	Long: `Validate checks a flow file for errors without starting the wizard.

This command is designed for CI pipelines and flow authoring: it parses
the file, checks the format version, and verifies step and field
declarations.

Exit codes:
  0 - Valid flow file
  1 - Parse or structural errors found

Examples:
  passage validate flows/open-position.yaml
  passage validate flows/open-position.yaml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidateFlow,
}

var validateJSON bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output results as JSON")
}

func runValidateFlow(_ *cobra.Command, args []string) error {
	def, err := loadFlow(args[0])

	if validateJSON {
		outputValidateJSON(def, err)
		if err != nil {
			os.Exit(1)
		}
		return nil
	}

	if err != nil {
		return err
	}

	fieldCount := 0
	for _, step := range def.Steps {
		fieldCount += len(step.Fields)
	}
	fmt.Printf("✓ %s is valid\n", args[0])
	fmt.Printf("  flow:    %s (version %s)\n", def.Name, def.Version)
	fmt.Printf("  steps:   %d\n", len(def.Steps))
	fmt.Printf("  fields:  %d\n", fieldCount)
	return nil
}

func outputValidateJSON(def *flowdef.Definition, err error) {
	output := struct {
		Valid   bool   `json:"valid"`
		Name    string `json:"name,omitempty"`
		Version string `json:"version,omitempty"`
		Steps   int    `json:"steps,omitempty"`
		Error   string `json:"error,omitempty"`
	}{}

	if err != nil {
		output.Valid = false
		output.Error = formatError(err)
	} else if def != nil {
		output.Valid = true
		output.Name = def.Name
		output.Version = def.Version
		output.Steps = len(def.Steps)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}
