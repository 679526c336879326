package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudforge-io/cloudforge/internal/engine"
	"github.com/cloudforge-io/cloudforge/internal/eval"
)

var graphCmd = &cobra.Command{
	Use:   "graph [template]",
	Short: "Output the dependency graph in DOT format",
	Long: `Generates a visual representation of the resource dependency graph
in Graphviz DOT format. Pipe the output to 'dot' to generate an image:

  cloudforge graph | dot -Tpng > graph.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	wd, entryPoint, err := resolveTemplate(args)
	if err != nil {
		return err
	}

	evaluator := eval.NewEvaluator(wd)
	tpl, err := evaluator.LoadTemplate(cmd.Context(), entryPoint, nil)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	dag, err := engine.BuildDAG(tpl.Resources)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	fmt.Println("digraph cloudforge {")
	fmt.Println("  rankdir = \"BT\";")
	fmt.Println("  node [shape = rect];")
	fmt.Println()

	for _, spec := range tpl.Resources {
		fmt.Printf("  %q;\n", spec.Address())
	}
	fmt.Println()

	for _, spec := range tpl.Resources {
		addr := spec.Address()
		for _, dep := range dag.Dependencies(addr) {
			fmt.Printf("  %q -> %q;\n", addr, dep)
		}
	}

	fmt.Println("}")
	return nil
}
