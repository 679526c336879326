// Package azure implements the provider interface against the Azure control
// plane (ARM) and, for registry substructure, the registry data plane.
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/applicationinsights/armapplicationinsights"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/containerregistry/armcontainerregistry"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/operationalinsights/armoperationalinsights"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/logging"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// Name is the provider's registry key.
const Name = "azure"

// defaultARMAPIVersion is used for generic deletion of drift resources whose
// type has no dedicated client.
const defaultARMAPIVersion = "2021-04-01"

// Config carries the invocation-scoped settings. Constructed once by the
// CLI; nothing here is global.
type Config struct {
	SubscriptionID string
	TenantID       string
}

type Provider struct {
	cfg  Config
	cred azcore.TokenCredential

	groups       *armresources.ResourceGroupsClient
	resources    *armresources.Client
	registries   *armcontainerregistry.RegistriesClient
	webhooks     *armcontainerregistry.WebhooksClient
	vaults       *armkeyvault.VaultsClient
	components   *armapplicationinsights.ComponentsClient
	workspaces   *armoperationalinsights.WorkspacesClient
	accounts     *armstorage.AccountsClient
	nsgs         *armnetwork.SecurityGroupsClient
	identities   *armmsi.UserAssignedIdentitiesClient
	roles        *armauthorization.RoleAssignmentsClient
	actionGroups *armmonitor.ActionGroupsClient
	metricAlerts *armmonitor.MetricAlertsClient
}

var _ provider.Provider = (*Provider)(nil)

// New authenticates and builds the ARM clients. Authentication failures are
// reported as provider.ErrNotLoggedIn so the run aborts before any mutation.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.SubscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription id is required", provider.ErrDependencyUnavailable)
	}

	cred, err := newCredential(ctx)
	if err != nil {
		return nil, err
	}

	p := &Provider{cfg: cfg, cred: cred}

	if p.groups, err = armresources.NewResourceGroupsClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create resource groups client: %w", err)
	}
	if p.resources, err = armresources.NewClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create resources client: %w", err)
	}
	if p.registries, err = armcontainerregistry.NewRegistriesClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create registries client: %w", err)
	}
	if p.webhooks, err = armcontainerregistry.NewWebhooksClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create webhooks client: %w", err)
	}
	if p.vaults, err = armkeyvault.NewVaultsClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create vaults client: %w", err)
	}
	if p.components, err = armapplicationinsights.NewComponentsClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create components client: %w", err)
	}
	if p.workspaces, err = armoperationalinsights.NewWorkspacesClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create workspaces client: %w", err)
	}
	if p.accounts, err = armstorage.NewAccountsClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create storage accounts client: %w", err)
	}
	if p.nsgs, err = armnetwork.NewSecurityGroupsClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create security groups client: %w", err)
	}
	if p.identities, err = armmsi.NewUserAssignedIdentitiesClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create identities client: %w", err)
	}
	if p.roles, err = armauthorization.NewRoleAssignmentsClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create role assignments client: %w", err)
	}
	if p.actionGroups, err = armmonitor.NewActionGroupsClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create action groups client: %w", err)
	}
	if p.metricAlerts, err = armmonitor.NewMetricAlertsClient(cfg.SubscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create metric alerts client: %w", err)
	}

	return p, nil
}

// Credential exposes the token credential for data-plane clients (secret
// sink, registry content).
func (p *Provider) Credential() azcore.TokenCredential {
	return p.cred
}

func (p *Provider) Exists(ctx context.Context, scope string, spec *ir.ResourceSpec) (bool, error) {
	_, err := p.read(ctx, scope, spec)
	if err != nil {
		if provider.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *Provider) Read(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	return p.read(ctx, scope, spec)
}

func (p *Provider) read(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	switch spec.Kind {
	case ir.KindRegistry:
		return p.readRegistry(ctx, scope, spec.Name)
	case ir.KindVault:
		return p.readVault(ctx, scope, spec.Name)
	case ir.KindInsights:
		return p.readInsights(ctx, scope, spec.Name)
	case ir.KindWorkspace:
		return p.readWorkspace(ctx, scope, spec.Name)
	case ir.KindStorage:
		return p.readStorage(ctx, scope, spec.Name)
	case ir.KindNetworkGroup:
		return p.readNetworkGroup(ctx, scope, spec.Name)
	case ir.KindIdentity:
		return p.readIdentity(ctx, scope, spec.Name)
	case ir.KindActionGroup:
		return p.readActionGroup(ctx, scope, spec.Name)
	case ir.KindAlertRule:
		return p.readAlertRule(ctx, scope, spec.Name)
	}
	return nil, fmt.Errorf("unknown resource kind: %s", spec.Kind)
}

func (p *Provider) Create(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	logging.Debug("issuing create", "kind", spec.Kind, "name", spec.Name, "scope", scope)

	switch spec.Kind {
	case ir.KindRegistry:
		return p.createRegistry(ctx, scope, spec)
	case ir.KindVault:
		return p.createVault(ctx, scope, spec)
	case ir.KindInsights:
		return p.createInsights(ctx, scope, spec)
	case ir.KindWorkspace:
		return p.createWorkspace(ctx, scope, spec)
	case ir.KindStorage:
		return p.createStorage(ctx, scope, spec)
	case ir.KindNetworkGroup:
		return p.createNetworkGroup(ctx, scope, spec)
	case ir.KindIdentity:
		return p.createIdentity(ctx, scope, spec)
	case ir.KindActionGroup:
		return p.createActionGroup(ctx, scope, spec)
	case ir.KindAlertRule:
		return p.createAlertRule(ctx, scope, spec)
	}
	return nil, fmt.Errorf("unknown resource kind: %s", spec.Kind)
}

func (p *Provider) Delete(ctx context.Context, scope string, ref ir.ResourceRef) error {
	logging.Debug("issuing delete", "kind", ref.Kind, "name", ref.Name, "scope", scope)

	switch ref.Kind {
	case ir.KindRegistry:
		return p.deleteRegistry(ctx, scope, ref.Name)
	case ir.KindRepository:
		return p.deleteRepository(ctx, scope, ref)
	case ir.KindTag:
		return p.deleteTag(ctx, scope, ref)
	case ir.KindWebhook:
		return p.deleteWebhook(ctx, scope, ref)
	case ir.KindVault:
		return p.deleteVault(ctx, scope, ref.Name)
	case ir.KindInsights:
		return p.deleteInsights(ctx, scope, ref.Name)
	case ir.KindWorkspace:
		return p.deleteWorkspace(ctx, scope, ref.Name)
	case ir.KindStorage:
		return p.deleteStorage(ctx, scope, ref.Name)
	case ir.KindNetworkGroup:
		return p.deleteNetworkGroup(ctx, scope, ref.Name)
	case ir.KindIdentity:
		return p.deleteIdentity(ctx, scope, ref.Name)
	case ir.KindActionGroup:
		return p.deleteActionGroup(ctx, scope, ref.Name)
	case ir.KindAlertRule:
		return p.deleteAlertRule(ctx, scope, ref.Name)
	case ir.KindUnknown:
		return p.deleteGeneric(ctx, ref)
	}
	return fmt.Errorf("unknown resource kind: %s", ref.Kind)
}

// Children enumerates substructure: a registry holds webhooks and
// repositories, a repository holds tags. Everything else is flat.
func (p *Provider) Children(ctx context.Context, scope string, ref ir.ResourceRef) ([]ir.ResourceRef, error) {
	switch ref.Kind {
	case ir.KindRegistry:
		return p.registryChildren(ctx, scope, ref)
	case ir.KindRepository:
		return p.repositoryChildren(ctx, scope, ref)
	}
	return nil, nil
}

// List enumerates the live resources in the scope, including drift that was
// never declared in any template.
func (p *Provider) List(ctx context.Context, scope string) ([]ir.ResourceRef, error) {
	var refs []ir.ResourceRef
	pager := p.resources.NewListByResourceGroupPager(scope, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return nil, provider.ErrNotFound
			}
			return nil, fmt.Errorf("failed to list resources in %s: %w", scope, err)
		}
		for _, res := range page.Value {
			refs = append(refs, ir.ResourceRef{
				Kind: kindFromARMType(deref(res.Type)),
				Name: deref(res.Name),
				ID:   deref(res.ID),
			})
		}
	}
	return refs, nil
}

func (p *Provider) ScopeExists(ctx context.Context, scope string) (bool, error) {
	resp, err := p.groups.CheckExistence(ctx, scope, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check resource group %s: %w", scope, err)
	}
	return resp.Success, nil
}

func (p *Provider) EnsureScope(ctx context.Context, scope, location string) error {
	exists, err := p.ScopeExists(ctx, scope)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	logging.Info("creating resource group", "name", scope, "location", location)
	_, err = p.groups.CreateOrUpdate(ctx, scope, armresources.ResourceGroup{
		Location: &location,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create resource group %s: %w", scope, err)
	}
	return nil
}

// BeginDeleteScope starts the resource group deletion and returns without
// polling: group cleanup can take minutes and the run does not block on it.
func (p *Provider) BeginDeleteScope(ctx context.Context, scope string) error {
	_, err := p.groups.BeginDelete(ctx, scope, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to start deletion of resource group %s: %w", scope, err)
	}
	logging.Info("resource group deletion started", "name", scope)
	return nil
}

// deleteGeneric removes a drift resource by ID. A version mismatch here is
// tolerable: the final scope deletion sweeps up anything left behind.
func (p *Provider) deleteGeneric(ctx context.Context, ref ir.ResourceRef) error {
	poller, err := p.resources.BeginDeleteByID(ctx, ref.ID, defaultARMAPIVersion, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", ref.ID, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ref.ID, err)
	}
	return nil
}

// groupID returns the ARM ID of the enclosing resource group.
func (p *Provider) groupID(scope string) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", p.cfg.SubscriptionID, scope)
}

var armTypeToKind = map[string]ir.Kind{
	"microsoft.containerregistry/registries":           ir.KindRegistry,
	"microsoft.keyvault/vaults":                        ir.KindVault,
	"microsoft.insights/components":                    ir.KindInsights,
	"microsoft.operationalinsights/workspaces":         ir.KindWorkspace,
	"microsoft.storage/storageaccounts":                ir.KindStorage,
	"microsoft.network/networksecuritygroups":          ir.KindNetworkGroup,
	"microsoft.managedidentity/userassignedidentities": ir.KindIdentity,
	"microsoft.insights/metricalerts":                  ir.KindAlertRule,
	"microsoft.insights/actiongroups":                  ir.KindActionGroup,
}

func kindFromARMType(armType string) ir.Kind {
	if kind, ok := armTypeToKind[lower(armType)]; ok {
		return kind
	}
	return ir.KindUnknown
}

// isNotFound reports whether an ARM call failed because the target is gone.
func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

// isConflict reports an ARM 409, which for role assignments means the
// assignment already exists.
func isConflict(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusConflict
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
