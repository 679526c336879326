package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/cloudforge/internal/ir"
)

func TestOutcomeStyle(t *testing.T) {
	tests := []struct {
		outcome ir.Outcome
		symbol  string
	}{
		{ir.OutcomeCreated, "+"},
		{ir.OutcomeDeleted, "+"},
		{ir.OutcomeAlreadyExists, "="},
		{ir.OutcomeNotFound, "="},
		{ir.OutcomeBlocked, "!"},
		{ir.OutcomeFailed, "x"},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			symbol, _ := outcomeStyle(tt.outcome)
			assert.Equal(t, tt.symbol, symbol)
		})
	}
}

func TestPresentTense(t *testing.T) {
	assert.Equal(t, "creating", presentTense("create"))
	assert.Equal(t, "deleting", presentTense("delete"))
	assert.Equal(t, "refresh", presentTense("refresh"))
}

func TestTimeUnit(t *testing.T) {
	assert.Equal(t, time.Millisecond, timeUnit(300*time.Millisecond))
	assert.Equal(t, 100*time.Millisecond, timeUnit(3*time.Second))
}

func TestAzureConfig_EnvFallback(t *testing.T) {
	t.Setenv("AZURE_SUBSCRIPTION_ID", "sub-from-env")
	t.Setenv("AZURE_TENANT_ID", "tenant-from-env")

	rootSubscription = ""
	rootTenant = ""
	cfg := azureConfig()
	assert.Equal(t, "sub-from-env", cfg.SubscriptionID)
	assert.Equal(t, "tenant-from-env", cfg.TenantID)

	// Flags win over the environment.
	rootSubscription = "sub-from-flag"
	defer func() { rootSubscription = "" }()
	cfg = azureConfig()
	assert.Equal(t, "sub-from-flag", cfg.SubscriptionID)
}

func TestResolveTemplate_Default(t *testing.T) {
	wd, entryPoint, err := resolveTemplate(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, wd)
	assert.Equal(t, "main.pkl", entryPoint)
}

func TestRequireGroup(t *testing.T) {
	rootGroup = ""
	_, err := requireGroup()
	assert.Error(t, err)

	rootGroup = "web-prod"
	defer func() { rootGroup = "" }()
	scope, err := requireGroup()
	require.NoError(t, err)
	assert.Equal(t, "web-prod", scope)
}
