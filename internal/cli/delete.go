package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteAutoApprove bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete everything in the resource group",
	Long: `Enumerates the live resources in the resource group and deletes them
all, including anything created outside of cloudforge. The resource group
itself is deleted last; the command returns while that deletion is still in
flight.

Deleting a group that is already gone is a no-op.`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteAutoApprove, "auto-approve", false, "Skip interactive confirmation before deleting")
}

func runDelete(cmd *cobra.Command, args []string) error {
	scope, err := requireGroup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if !deleteAutoApprove {
		// Deletion is destructive and sweeps undeclared resources too, so
		// it takes two confirmations.
		fmt.Printf("This will delete EVERY resource in group %q, declared or not.\n", scope)
		fmt.Print("Type 'yes' to continue: ")
		var first string
		fmt.Scanln(&first)
		if first != "yes" {
			fmt.Println("Delete cancelled.")
			return nil
		}
		fmt.Print("This cannot be undone. Type 'yes' again to confirm: ")
		var second string
		fmt.Scanln(&second)
		if second != "yes" {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	eng, _, err := newAzureEngine(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nDeleting resources in %s...\n", scope)
	results, err := eng.ReconcileDeleteWithCallback(ctx, scope, renderEvent)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	if failures := renderResults(results); failures > 0 {
		return fmt.Errorf("%d resources could not be deleted", failures)
	}

	fmt.Println("\nDelete complete! Group deletion continues in the background.")
	return nil
}
