package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

func (p *Provider) createStorage(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	sku := armstorage.SKUName(stringProp(spec.Properties, "sku", "Standard_LRS"))

	poller, err := p.accounts.BeginCreate(ctx, scope, spec.Name, armstorage.AccountCreateParameters{
		Location: to.Ptr(spec.Location),
		Kind:     to.Ptr(armstorage.KindStorageV2),
		SKU: &armstorage.SKU{
			Name: to.Ptr(sku),
		},
		Properties: &armstorage.AccountPropertiesCreateParameters{
			AllowBlobPublicAccess: to.Ptr(boolProp(spec.Properties, "allowPublicAccess", false)),
			MinimumTLSVersion:     to.Ptr(armstorage.MinimumTLSVersionTLS12),
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage account %s: %w", spec.Name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to create storage account %s: %w", spec.Name, err)
	}

	return p.readStorage(ctx, scope, spec.Name)
}

func (p *Provider) readStorage(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.accounts.GetProperties(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get storage account %s: %w", name, err)
	}

	outputs := map[string]any{
		"id": deref(resp.ID),
	}
	if resp.Properties != nil && resp.Properties.PrimaryEndpoints != nil {
		outputs["blobEndpoint"] = deref(resp.Properties.PrimaryEndpoints.Blob)
	}

	keys, err := p.accounts.ListKeys(ctx, scope, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys for storage account %s: %w", name, err)
	}
	if len(keys.Keys) > 0 {
		outputs["primaryKey"] = deref(keys.Keys[0].Value)
	}

	return outputs, nil
}

func (p *Provider) deleteStorage(ctx context.Context, scope, name string) error {
	_, err := p.accounts.Delete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete storage account %s: %w", name, err)
	}
	return nil
}
