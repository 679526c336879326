package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/monitor/armmonitor"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// createActionGroup provisions a notification target. ARM requires the
// location "Global" for action groups regardless of the template's region.
func (p *Provider) createActionGroup(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	var receivers []*armmonitor.EmailReceiver
	for i, addr := range stringSliceProp(spec.Properties, "emails") {
		receivers = append(receivers, &armmonitor.EmailReceiver{
			Name:         to.Ptr(fmt.Sprintf("email-%d", i)),
			EmailAddress: to.Ptr(addr),
		})
	}

	shortName := stringProp(spec.Properties, "shortName", spec.Name)
	if len(shortName) > 12 {
		shortName = shortName[:12]
	}

	_, err := p.actionGroups.CreateOrUpdate(ctx, scope, spec.Name, armmonitor.ActionGroupResource{
		Location: to.Ptr("Global"),
		Properties: &armmonitor.ActionGroup{
			GroupShortName: to.Ptr(shortName),
			Enabled:        to.Ptr(true),
			EmailReceivers: receivers,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create action group %s: %w", spec.Name, err)
	}

	return p.readActionGroup(ctx, scope, spec.Name)
}

func (p *Provider) readActionGroup(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.actionGroups.Get(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get action group %s: %w", name, err)
	}

	return map[string]any{
		"id": deref(resp.ID),
	}, nil
}

func (p *Provider) deleteActionGroup(ctx context.Context, scope, name string) error {
	_, err := p.actionGroups.Delete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete action group %s: %w", name, err)
	}
	return nil
}

// createAlertRule provisions a metric alert against a single target
// resource. The targetId property usually arrives as a ref:// and is
// resolved by the engine before the call.
func (p *Provider) createAlertRule(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	targetID := stringProp(spec.Properties, "targetId", "")
	if targetID == "" {
		return nil, &provider.ValidationError{
			Address: spec.Address(),
			Reason:  "alert rule requires a targetId property",
		}
	}

	criteria := &armmonitor.MetricAlertSingleResourceMultipleMetricCriteria{
		ODataType: to.Ptr(armmonitor.OdatatypeMicrosoftAzureMonitorSingleResourceMultipleMetricCriteria),
		AllOf: []*armmonitor.MetricCriteria{{
			Name:            to.Ptr("criterion-0"),
			MetricName:      to.Ptr(stringProp(spec.Properties, "metricName", "requests/failed")),
			Operator:        to.Ptr(armmonitor.OperatorGreaterThan),
			Threshold:       to.Ptr(float64Prop(spec.Properties, "threshold", 5)),
			TimeAggregation: to.Ptr(armmonitor.AggregationTypeEnumCount),
		}},
	}

	properties := &armmonitor.MetricAlertProperties{
		Enabled:             to.Ptr(true),
		Severity:            to.Ptr(int32Prop(spec.Properties, "severity", 2)),
		Scopes:              []*string{to.Ptr(targetID)},
		EvaluationFrequency: to.Ptr(stringProp(spec.Properties, "frequency", "PT5M")),
		WindowSize:          to.Ptr(stringProp(spec.Properties, "window", "PT15M")),
		Criteria:            criteria,
		AutoMitigate:        to.Ptr(true),
	}
	if actionGroupID := stringProp(spec.Properties, "actionGroupId", ""); actionGroupID != "" {
		properties.Actions = []*armmonitor.MetricAlertAction{{
			ActionGroupID: to.Ptr(actionGroupID),
		}}
	}

	_, err := p.metricAlerts.CreateOrUpdate(ctx, scope, spec.Name, armmonitor.MetricAlertResource{
		Location:   to.Ptr("global"),
		Properties: properties,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert rule %s: %w", spec.Name, err)
	}

	return p.readAlertRule(ctx, scope, spec.Name)
}

func (p *Provider) readAlertRule(ctx context.Context, scope, name string) (map[string]any, error) {
	resp, err := p.metricAlerts.Get(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get alert rule %s: %w", name, err)
	}

	return map[string]any{
		"id": deref(resp.ID),
	}, nil
}

func (p *Provider) deleteAlertRule(ctx context.Context, scope, name string) error {
	_, err := p.metricAlerts.Delete(ctx, scope, name, nil)
	if err != nil {
		if isNotFound(err) {
			return provider.ErrNotFound
		}
		return fmt.Errorf("failed to delete alert rule %s: %w", name, err)
	}
	return nil
}
