package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudforge-io/cloudforge/internal/engine"
	"github.com/cloudforge-io/cloudforge/internal/eval"
	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/secrets"
	"github.com/cloudforge-io/cloudforge/providers/azure"
)

var (
	createAutoApprove bool
	createParameters  map[string]string
)

var createCmd = &cobra.Command{
	Use:   "create [template]",
	Short: "Create or converge the declared environment",
	Long: `Evaluates the template and brings the resource group to the declared
state. Resources that already exist are left alone, so re-running after an
interruption picks up where the previous run stopped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().BoolVar(&createAutoApprove, "auto-approve", false, "Skip interactive approval before creating")
	createCmd.Flags().StringToStringVarP(&createParameters, "param", "D", nil, "Set template parameters (format: key=value)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	wd, entryPoint, err := resolveTemplate(args)
	if err != nil {
		return err
	}
	scope, err := requireGroup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	fmt.Print("Evaluating template... ")
	evaluator := eval.NewEvaluator(wd)
	tpl, err := evaluator.LoadTemplate(ctx, entryPoint, createParameters)
	if err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("failed to load template: %w", err)
	}
	fmt.Println("OK")

	desired := &ir.DesiredState{
		Scope:     scope,
		Location:  rootLocation,
		Resources: tpl.Resources,
		Outputs:   tpl.Outputs,
		Secrets:   tpl.Secrets,
	}

	// Ordering is computed up front so the confirmation shows exactly what
	// will run, in the order it will run.
	dag, err := engine.BuildDAG(desired.Resources)
	if err != nil {
		return err
	}

	fmt.Printf("\nCloudforge will converge %d resources in %s:\n", len(desired.Resources), scope)
	for _, addr := range dag.CreationOrder() {
		fmt.Printf("%s  + %s%s\n", colorGreen, addr, colorReset)
	}

	if !createAutoApprove {
		fmt.Print("\nDo you want to perform these actions? (y/n): ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "yes" {
			fmt.Println("Create cancelled.")
			return nil
		}
	}

	eng, prov, err := newAzureEngine(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	results, err := eng.ReconcileCreateWithCallback(ctx, desired, renderEvent)
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	failures := renderResults(results)

	outputs, secretValues := eng.ResolveOutputs(desired, results)

	if len(secretValues) > 0 {
		if err := storeSecrets(ctx, prov, results, secretValues); err != nil {
			fmt.Printf("%s  secrets: %v%s\n", colorRed, err, colorReset)
			failures++
		} else {
			fmt.Printf("\nStored %d secrets in the vault.\n", len(secretValues))
		}
	}

	if len(outputs) > 0 {
		fmt.Println("\nOutputs:")
		for k, v := range outputs {
			fmt.Printf("  %s = %v\n", k, v)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d resources did not reach the declared state", failures)
	}

	fmt.Println("\nCreate complete! Environment is ready.")
	return nil
}

// storeSecrets writes the resolved secret values into the vault created (or
// found) by this run. The vault URI comes from the vault resource's outputs.
func storeSecrets(ctx context.Context, prov *azure.Provider, results []*ir.ReconciliationResult, values map[string]string) error {
	vaultURI := ""
	for _, res := range results {
		if res.Spec != nil && res.Spec.Kind == ir.KindVault && res.Succeeded() {
			if uri, ok := res.Outputs["vaultUri"].(string); ok {
				vaultURI = uri
				break
			}
		}
	}
	if vaultURI == "" {
		return fmt.Errorf("no vault available to store secrets")
	}

	sink, err := secrets.NewKeyVaultSink(vaultURI, prov.Credential())
	if err != nil {
		return err
	}
	return secrets.PutAll(ctx, sink, values)
}
