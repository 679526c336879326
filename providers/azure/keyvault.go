package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

func (p *Provider) createVault(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	if p.cfg.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required to create a key vault", provider.ErrDependencyUnavailable)
	}

	skuName := armkeyvault.SKUNameStandard
	if lower(stringProp(spec.Properties, "sku", "standard")) == "premium" {
		skuName = armkeyvault.SKUNamePremium
	}

	poller, err := p.vaults.BeginCreateOrUpdate(ctx, scope, spec.Name, armkeyvault.VaultCreateOrUpdateParameters{
		Location: to.Ptr(spec.Location),
		Properties: &armkeyvault.VaultProperties{
			TenantID: to.Ptr(p.cfg.TenantID),
			SKU: &armkeyvault.SKU{
				Family: to.Ptr(armkeyvault.SKUFamilyA),
				Name:   to.Ptr(skuName),
			},
			EnableRbacAuthorization: to.Ptr(boolProp(spec.Properties, "rbacAuthorization", true)),
			AccessPolicies:          []*armkeyvault.AccessPolicyEntry{},
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault %s: %w", spec.Name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to create vault %s: %w", spec.Name, err)
	}

	return p.readVault(ctx, scope, spec.Name)
}

func (p *Provider) readVault(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.vaults.Get(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vault %s: %w", name, err)
	}

	return map[string]any{
		"id":       deref(resp.ID),
		"vaultUri": deref(resp.Properties.VaultURI),
	}, nil
}

func (p *Provider) deleteVault(ctx context.Context, scope, name string) error {
	_, err := p.vaults.Delete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete vault %s: %w", name, err)
	}
	return nil
}
