package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/containers/azcontainerregistry"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/containerregistry/armcontainerregistry"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

func (p *Provider) createRegistry(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	sku := armcontainerregistry.SKUName(stringProp(spec.Properties, "sku", "Basic"))

	poller, err := p.registries.BeginCreate(ctx, scope, spec.Name, armcontainerregistry.Registry{
		Location: to.Ptr(spec.Location),
		SKU: &armcontainerregistry.SKU{
			Name: to.Ptr(sku),
		},
		Properties: &armcontainerregistry.RegistryProperties{
			AdminUserEnabled: to.Ptr(boolProp(spec.Properties, "adminEnabled", true)),
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry %s: %w", spec.Name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to create registry %s: %w", spec.Name, err)
	}

	return p.readRegistry(ctx, scope, spec.Name)
}

func (p *Provider) readRegistry(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.registries.Get(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registry %s: %w", name, err)
	}

	outputs := map[string]any{
		"id":          deref(resp.ID),
		"loginServer": deref(resp.Properties.LoginServer),
	}

	// Admin credentials feed the CI/CD pipeline's push step and the secret
	// sink. Only available when the admin user is enabled.
	if resp.Properties.AdminUserEnabled != nil && *resp.Properties.AdminUserEnabled {
		creds, err := p.registries.ListCredentials(ctx, scope, name, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list credentials for registry %s: %w", name, err)
		}
		outputs["adminUsername"] = deref(creds.Username)
		if len(creds.Passwords) > 0 {
			outputs["adminPassword"] = deref(creds.Passwords[0].Value)
		}
	}

	return outputs, nil
}

func (p *Provider) deleteRegistry(ctx context.Context, scope, name string) error {
	poller, err := p.registries.BeginDelete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete registry %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete registry %s: %w", name, err)
	}
	return nil
}

// registryChildren enumerates webhooks (control plane) and repositories
// (data plane) under a registry.
func (p *Provider) registryChildren(ctx context.Context, scope string, ref ir.ResourceRef) ([]ir.ResourceRef, error) {
	var children []ir.ResourceRef

	hooks := p.webhooks.NewListPager(scope, ref.Name, nil)
	for hooks.More() {
		page, err := hooks.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return nil, provider.ErrNotFound
			}
			return nil, fmt.Errorf("failed to list webhooks of %s: %w", ref.Name, err)
		}
		for _, hook := range page.Value {
			children = append(children, ir.ResourceRef{
				Kind:   ir.KindWebhook,
				Name:   deref(hook.Name),
				ID:     deref(hook.ID),
				Parent: &ref,
			})
		}
	}

	client, err := p.acrDataClient(ctx, scope, ref.Name)
	if err != nil {
		if provider.IsNotFound(err) {
			return children, nil
		}
		return nil, err
	}

	repos := client.NewListRepositoriesPager(nil)
	for repos.More() {
		page, err := repos.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories of %s: %w", ref.Name, err)
		}
		for _, name := range page.Repositories.Names {
			children = append(children, ir.ResourceRef{
				Kind:   ir.KindRepository,
				Name:   deref(name),
				Parent: &ref,
			})
		}
	}

	return children, nil
}

// repositoryChildren enumerates the tags of one repository.
func (p *Provider) repositoryChildren(ctx context.Context, scope string, ref ir.ResourceRef) ([]ir.ResourceRef, error) {
	if ref.Parent == nil {
		return nil, fmt.Errorf("repository %s has no registry parent", ref.Name)
	}

	client, err := p.acrDataClient(ctx, scope, ref.Parent.Name)
	if err != nil {
		return nil, err
	}

	var children []ir.ResourceRef
	tags := client.NewListTagsPager(ref.Name, nil)
	for tags.More() {
		page, err := tags.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tags of %s: %w", ref.Name, err)
		}
		for _, tag := range page.Tags {
			children = append(children, ir.ResourceRef{
				Kind:   ir.KindTag,
				Name:   fmt.Sprintf("%s:%s", ref.Name, deref(tag.Name)),
				Parent: &ref,
			})
		}
	}

	return children, nil
}

func (p *Provider) deleteRepository(ctx context.Context, scope string, ref ir.ResourceRef) error {
	if ref.Parent == nil {
		return fmt.Errorf("repository %s has no registry parent", ref.Name)
	}
	client, err := p.acrDataClient(ctx, scope, ref.Parent.Name)
	if err != nil {
		return err
	}
	if _, err := client.DeleteRepository(ctx, ref.Name, nil); err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete repository %s: %w", ref.Name, err)
	}
	return nil
}

func (p *Provider) deleteTag(ctx context.Context, scope string, ref ir.ResourceRef) error {
	if ref.Parent == nil || ref.Parent.Parent == nil {
		return fmt.Errorf("tag %s has no repository parent", ref.Name)
	}
	client, err := p.acrDataClient(ctx, scope, ref.Parent.Parent.Name)
	if err != nil {
		return err
	}

	repo, tag := splitTagName(ref.Name, ref.Parent.Name)
	if _, err := client.DeleteTag(ctx, repo, tag, nil); err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete tag %s: %w", ref.Name, err)
	}
	return nil
}

func (p *Provider) deleteWebhook(ctx context.Context, scope string, ref ir.ResourceRef) error {
	if ref.Parent == nil {
		return fmt.Errorf("webhook %s has no registry parent", ref.Name)
	}
	poller, err := p.webhooks.BeginDelete(ctx, scope, ref.Parent.Name, ref.Name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete webhook %s: %w", ref.Name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete webhook %s: %w", ref.Name, err)
	}
	return nil
}

// acrDataClient opens a data-plane client against a registry's login server.
func (p *Provider) acrDataClient(ctx context.Context, scope, registryName string) (*azcontainerregistry.Client, error) {
	resp, err := p.registries.Get(ctx, scope, registryName, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registry %s: %w", registryName, err)
	}

	endpoint := "https://" + deref(resp.Properties.LoginServer)
	client, err := azcontainerregistry.NewClient(endpoint, p.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry data client for %s: %w", registryName, err)
	}
	return client, nil
}

// splitTagName recovers the bare tag from the repo:tag display name.
func splitTagName(display, repo string) (string, string) {
	if len(display) > len(repo)+1 && display[:len(repo)] == repo && display[len(repo)] == ':' {
		return repo, display[len(repo)+1:]
	}
	return repo, display
}
