package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/applicationinsights/armapplicationinsights"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/operationalinsights/armoperationalinsights"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// createInsights provisions an Application Insights component. The
// workspaceId property usually arrives as a ref:// to a workspace spec,
// resolved by the engine before the call.
func (p *Provider) createInsights(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	props := &armapplicationinsights.ComponentProperties{
		ApplicationType: to.Ptr(armapplicationinsights.ApplicationTypeWeb),
	}
	if workspaceID := stringProp(spec.Properties, "workspaceId", ""); workspaceID != "" {
		props.WorkspaceResourceID = to.Ptr(workspaceID)
	}

	_, err := p.components.CreateOrUpdate(ctx, scope, spec.Name, armapplicationinsights.Component{
		Location:   to.Ptr(spec.Location),
		Kind:       to.Ptr(stringProp(spec.Properties, "kind", "web")),
		Properties: props,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create insights component %s: %w", spec.Name, err)
	}

	return p.readInsights(ctx, scope, spec.Name)
}

func (p *Provider) readInsights(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.components.Get(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get insights component %s: %w", name, err)
	}

	return map[string]any{
		"id":                 deref(resp.ID),
		"instrumentationKey": deref(resp.Properties.InstrumentationKey),
		"connectionString":   deref(resp.Properties.ConnectionString),
	}, nil
}

func (p *Provider) deleteInsights(ctx context.Context, scope, name string) error {
	_, err := p.components.Delete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete insights component %s: %w", name, err)
	}
	return nil
}

func (p *Provider) createWorkspace(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	poller, err := p.workspaces.BeginCreateOrUpdate(ctx, scope, spec.Name, armoperationalinsights.Workspace{
		Location: to.Ptr(spec.Location),
		Properties: &armoperationalinsights.WorkspaceProperties{
			SKU: &armoperationalinsights.WorkspaceSKU{
				Name: to.Ptr(armoperationalinsights.WorkspaceSKUNameEnumPerGB2018),
			},
			RetentionInDays: to.Ptr(int32Prop(spec.Properties, "retentionDays", 30)),
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", spec.Name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", spec.Name, err)
	}

	return p.readWorkspace(ctx, scope, spec.Name)
}

func (p *Provider) readWorkspace(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.workspaces.Get(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workspace %s: %w", name, err)
	}

	return map[string]any{
		"id":         deref(resp.ID),
		"customerId": deref(resp.Properties.CustomerID),
	}, nil
}

func (p *Provider) deleteWorkspace(ctx context.Context, scope, name string) error {
	poller, err := p.workspaces.BeginDelete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete workspace %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete workspace %s: %w", name, err)
	}
	return nil
}
