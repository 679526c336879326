package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// createNetworkGroup provisions a network security group. Rules come from
// the template's properties; web defaults open 80/443 inbound.
func (p *Provider) createNetworkGroup(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	rules := securityRules(spec.Properties)

	poller, err := p.nsgs.BeginCreateOrUpdate(ctx, scope, spec.Name, armnetwork.SecurityGroup{
		Location: to.Ptr(spec.Location),
		Properties: &armnetwork.SecurityGroupPropertiesFormat{
			SecurityRules: rules,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create network security group %s: %w", spec.Name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to create network security group %s: %w", spec.Name, err)
	}

	return p.readNetworkGroup(ctx, scope, spec.Name)
}

func (p *Provider) readNetworkGroup(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.nsgs.Get(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get network security group %s: %w", name, err)
	}

	return map[string]any{
		"id": deref(resp.ID),
	}, nil
}

func (p *Provider) deleteNetworkGroup(ctx context.Context, scope, name string) error {
	poller, err := p.nsgs.BeginDelete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete network security group %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete network security group %s: %w", name, err)
	}
	return nil
}

// securityRules maps the template's allowPorts list into inbound allow
// rules, one per port, priority-ordered from 100.
func securityRules(props map[string]any) []*armnetwork.SecurityRule {
	ports := stringSliceProp(props, "allowPorts")
	if len(ports) == 0 {
		ports = []string{"80", "443"}
	}

	rules := make([]*armnetwork.SecurityRule, 0, len(ports))
	for i, port := range ports {
		rules = append(rules, &armnetwork.SecurityRule{
			Name: to.Ptr(fmt.Sprintf("allow-inbound-%s", port)),
			Properties: &armnetwork.SecurityRulePropertiesFormat{
				Priority:                 to.Ptr(int32(100 + i*10)),
				Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
				Access:                   to.Ptr(armnetwork.SecurityRuleAccessAllow),
				Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolTCP),
				SourceAddressPrefix:      to.Ptr("*"),
				SourcePortRange:          to.Ptr("*"),
				DestinationAddressPrefix: to.Ptr("*"),
				DestinationPortRange:     to.Ptr(port),
			},
		})
	}
	return rules
}
