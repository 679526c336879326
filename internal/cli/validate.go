package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudforge-io/cloudforge/internal/engine"
	"github.com/cloudforge-io/cloudforge/internal/eval"
	"github.com/cloudforge-io/cloudforge/providers/azure"
)

var validateParameters map[string]string

var validateCmd = &cobra.Command{
	Use:   "validate [template]",
	Short: "Validate a template without touching the cloud",
	Long: `Evaluates the template, checks resource names against the platform's
naming rules and verifies the dependency graph is acyclic. Nothing is
created and no credentials are required.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringToStringVarP(&validateParameters, "param", "D", nil, "Set template parameters (format: key=value)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	wd, entryPoint, err := resolveTemplate(args)
	if err != nil {
		return err
	}

	fmt.Printf("Checking %s... ", entryPoint)
	evaluator := eval.NewEvaluator(wd)
	tpl, err := evaluator.LoadTemplate(cmd.Context(), entryPoint, validateParameters)
	if err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Println("OK")

	fmt.Print("Checking dependency graph... ")
	if _, err := engine.BuildDAG(tpl.Resources); err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Println("OK")

	fmt.Print("Checking resource names... ")
	var prov azure.Provider
	for _, spec := range tpl.Resources {
		if err := prov.Validate(spec); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	fmt.Println("OK")

	fmt.Println("\nTemplate is valid!")
	return nil
}
