package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudforge-io/cloudforge/internal/engine"
	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
	"github.com/cloudforge-io/cloudforge/providers/azure"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

// resolveTemplate turns the optional positional argument into a project
// directory plus entry point. No argument means main.pkl in the working
// directory.
func resolveTemplate(args []string) (string, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("failed to get working directory: %w", err)
	}
	entryPoint := "main.pkl"

	if len(args) > 0 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve path %s: %w", args[0], err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return "", "", fmt.Errorf("failed to stat path %s: %w", args[0], err)
		}

		if info.IsDir() {
			wd = absPath
		} else {
			wd = filepath.Dir(absPath)
			entryPoint = filepath.Base(absPath)
		}
	}

	return wd, entryPoint, nil
}

// azureConfig assembles the provider configuration from flags and the
// conventional environment variables.
func azureConfig() azure.Config {
	cfg := azure.Config{
		SubscriptionID: rootSubscription,
		TenantID:       rootTenant,
	}
	if cfg.SubscriptionID == "" {
		cfg.SubscriptionID = os.Getenv("AZURE_SUBSCRIPTION_ID")
	}
	if cfg.TenantID == "" {
		cfg.TenantID = os.Getenv("AZURE_TENANT_ID")
	}
	return cfg
}

// newAzureEngine authenticates against Azure and returns an engine wired to
// the live provider. Authentication problems surface here, before any
// mutation.
func newAzureEngine(ctx context.Context) (*engine.Engine, *azure.Provider, error) {
	prov, err := azure.New(ctx, azureConfig())
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry()
	registry.Register(azure.Name, prov)
	return engine.NewEngine(registry, azure.Name), prov, nil
}

func requireGroup() (string, error) {
	if rootGroup == "" {
		return "", fmt.Errorf("a resource group is required, pass --group")
	}
	return rootGroup, nil
}

// renderEvent prints one progress line per reconciliation event.
func renderEvent(event engine.Event) {
	switch event.Status {
	case "started":
		fmt.Printf("  %s: %s...\n", event.Address, presentTense(event.Action))
	case "completed":
		fmt.Printf("%s  %s: done (%s)%s\n", colorGreen, event.Address, event.Duration.Round(timeUnit(event.Duration)), colorReset)
	case "failed":
		fmt.Printf("%s  %s: failed: %v%s\n", colorRed, event.Address, event.Err, colorReset)
	case "skipped":
		fmt.Printf("%s  %s: skipped%s\n", colorYellow, event.Address, colorReset)
	}
}

// renderResults prints the per-resource outcome table and returns the number
// of resources that did not reach a usable terminal state.
func renderResults(results []*ir.ReconciliationResult) int {
	failures := 0
	fmt.Println("\nResults:")
	for _, res := range results {
		symbol, color := outcomeStyle(res.Outcome)
		fmt.Printf("%s  %s %-14s %s%s\n", color, symbol, res.Outcome, res.Address(), colorReset)
		if res.Err != nil {
			fmt.Printf("%s      %v%s\n", color, res.Err, colorReset)
		}
		if !res.Succeeded() {
			failures++
		}
	}
	return failures
}

func outcomeStyle(outcome ir.Outcome) (string, string) {
	switch outcome {
	case ir.OutcomeCreated, ir.OutcomeDeleted:
		return "+", colorGreen
	case ir.OutcomeAlreadyExists, ir.OutcomeNotFound:
		return "=", colorReset
	case ir.OutcomeBlocked:
		return "!", colorYellow
	case ir.OutcomeFailed:
		return "x", colorRed
	}
	return "?", colorReset
}

func presentTense(action string) string {
	switch action {
	case "create":
		return "creating"
	case "delete":
		return "deleting"
	}
	return action
}

func timeUnit(d time.Duration) time.Duration {
	if d >= time.Second {
		return time.Second / 10
	}
	return time.Millisecond
}
