package azure

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"

	"github.com/cloudforge-io/cloudforge/internal/ir"
)

func TestKindFromARMType(t *testing.T) {
	tests := []struct {
		armType string
		want    ir.Kind
	}{
		{"Microsoft.ContainerRegistry/registries", ir.KindRegistry},
		{"Microsoft.KeyVault/vaults", ir.KindVault},
		{"microsoft.insights/components", ir.KindInsights},
		{"Microsoft.OperationalInsights/workspaces", ir.KindWorkspace},
		{"Microsoft.Storage/storageAccounts", ir.KindStorage},
		{"Microsoft.Network/networkSecurityGroups", ir.KindNetworkGroup},
		{"Microsoft.ManagedIdentity/userAssignedIdentities", ir.KindIdentity},
		{"Microsoft.Insights/metricAlerts", ir.KindAlertRule},
		{"Microsoft.Compute/virtualMachines", ir.KindUnknown},
		{"", ir.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.armType, func(t *testing.T) {
			assert.Equal(t, tt.want, kindFromARMType(tt.armType))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&azcore.ResponseError{StatusCode: http.StatusNotFound}))
	assert.True(t, isNotFound(fmt.Errorf("get failed: %w", &azcore.ResponseError{StatusCode: http.StatusNotFound})))
	assert.False(t, isNotFound(&azcore.ResponseError{StatusCode: http.StatusConflict}))
	assert.False(t, isNotFound(fmt.Errorf("plain error")))
	assert.False(t, isNotFound(nil))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, isConflict(&azcore.ResponseError{StatusCode: http.StatusConflict}))
	assert.False(t, isConflict(&azcore.ResponseError{StatusCode: http.StatusNotFound}))
	assert.False(t, isConflict(nil))
}

func TestGroupID(t *testing.T) {
	p := &Provider{cfg: Config{SubscriptionID: "sub-123"}}
	assert.Equal(t, "/subscriptions/sub-123/resourceGroups/web-prod", p.groupID("web-prod"))
}

func TestSplitTagName(t *testing.T) {
	repo, tag := splitTagName("app:v1", "app")
	assert.Equal(t, "app", repo)
	assert.Equal(t, "v1", tag)

	// A display name without the repo prefix passes through as the tag.
	repo, tag = splitTagName("v2", "app")
	assert.Equal(t, "app", repo)
	assert.Equal(t, "v2", tag)
}

func TestPropHelpers(t *testing.T) {
	props := map[string]any{
		"sku":       "Premium",
		"enabled":   true,
		"retention": 90,
		"threshold": 2.5,
		"ports":     []any{"80", 443},
	}

	assert.Equal(t, "Premium", stringProp(props, "sku", "Basic"))
	assert.Equal(t, "Basic", stringProp(props, "missing", "Basic"))
	assert.True(t, boolProp(props, "enabled", false))
	assert.False(t, boolProp(props, "missing", false))
	assert.Equal(t, int32(90), int32Prop(props, "retention", 30))
	assert.Equal(t, int32(30), int32Prop(props, "missing", 30))
	assert.Equal(t, 2.5, float64Prop(props, "threshold", 1))
	assert.Equal(t, []string{"80", "443"}, stringSliceProp(props, "ports"))
	assert.Nil(t, stringSliceProp(props, "missing"))
}
