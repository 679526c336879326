package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
	"github.com/google/uuid"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// createIdentity provisions a user-assigned managed identity and, when the
// template names a role definition, grants it on the resource group.
func (p *Provider) createIdentity(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	resp, err := p.identities.CreateOrUpdate(ctx, scope, spec.Name, armmsi.Identity{
		Location: to.Ptr(spec.Location),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity %s: %w", spec.Name, err)
	}

	if roleDef := stringProp(spec.Properties, "roleDefinitionId", ""); roleDef != "" {
		assignScope := stringProp(spec.Properties, "roleScope", p.groupID(scope))
		if err := p.assignRole(ctx, assignScope, roleDef, deref(resp.Properties.PrincipalID)); err != nil {
			return nil, fmt.Errorf("failed to assign role to identity %s: %w", spec.Name, err)
		}
	}

	return p.readIdentity(ctx, scope, spec.Name)
}

func (p *Provider) readIdentity(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.identities.Get(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get identity %s: %w", name, err)
	}

	return map[string]any{
		"id":          deref(resp.ID),
		"clientId":    deref(resp.Properties.ClientID),
		"principalId": deref(resp.Properties.PrincipalID),
	}, nil
}

func (p *Provider) deleteIdentity(ctx context.Context, scope, name string) error {
	_, err := p.identities.Delete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete identity %s: %w", name, err)
	}
	return nil
}

// assignRole creates a role assignment with a random name, the ARM
// convention for assignments. A 409 means the grant is already in place.
func (p *Provider) assignRole(ctx context.Context, assignScope, roleDefinitionID, principalID string) error {
	_, err := p.roles.Create(ctx, assignScope, uuid.NewString(), armauthorization.RoleAssignmentCreateParameters{
		Properties: &armauthorization.RoleAssignmentProperties{
			RoleDefinitionID: to.Ptr(roleDefinitionID),
			PrincipalID:      to.Ptr(principalID),
			PrincipalType:    to.Ptr(armauthorization.PrincipalTypeServicePrincipal),
		},
	}, nil)
	if err != nil && !isConflict(err) {
		return err
	}
	return nil
}
