package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/cloudforge/internal/ir"
)

func TestBuildDAG_NoDependencies(t *testing.T) {
	resources := []*ir.ResourceSpec{
		{Kind: ir.KindRegistry, Name: "a"},
		{Kind: ir.KindVault, Name: "b"},
		{Kind: ir.KindStorage, Name: "c"},
	}

	dag, err := BuildDAG(resources)
	require.NoError(t, err)

	// Independent resources keep their declaration order.
	assert.Equal(t, []string{"registry.a", "vault.b", "storage.c"}, dag.CreationOrder())
}

func TestBuildDAG_ExplicitDependsOn(t *testing.T) {
	resources := []*ir.ResourceSpec{
		{Kind: ir.KindInsights, Name: "a", DependsOn: []string{"workspace.b"}},
		{Kind: ir.KindWorkspace, Name: "b"},
		{Kind: ir.KindAlertRule, Name: "c", DependsOn: []string{"insights.a"}},
	}

	dag, err := BuildDAG(resources)
	require.NoError(t, err)

	order := dag.CreationOrder()
	require.Len(t, order, 3)

	posB := indexOf(order, "workspace.b")
	posA := indexOf(order, "insights.a")
	posC := indexOf(order, "alert-rule.c")

	assert.Less(t, posB, posA, "b should come before a")
	assert.Less(t, posA, posC, "a should come before c")
}

func TestBuildDAG_ImplicitRef(t *testing.T) {
	resources := []*ir.ResourceSpec{
		{
			Kind: ir.KindInsights,
			Name: "web",
			Properties: map[string]any{
				"workspaceId": "ref://workspace/logs/id",
			},
		},
		{Kind: ir.KindWorkspace, Name: "logs"},
	}

	dag, err := BuildDAG(resources)
	require.NoError(t, err)

	order := dag.CreationOrder()
	require.Len(t, order, 2)

	posWorkspace := indexOf(order, "workspace.logs")
	posInsights := indexOf(order, "insights.web")

	assert.Less(t, posWorkspace, posInsights, "workspace should be created before the component that references it")
}

func TestBuildDAG_CycleDetection(t *testing.T) {
	resources := []*ir.ResourceSpec{
		{Kind: ir.KindRegistry, Name: "a", DependsOn: []string{"vault.b"}},
		{Kind: ir.KindVault, Name: "b", DependsOn: []string{"registry.a"}},
	}

	_, err := BuildDAG(resources)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestBuildDAG_UndeclaredDependency(t *testing.T) {
	resources := []*ir.ResourceSpec{
		{Kind: ir.KindRegistry, Name: "a", DependsOn: []string{"vault.missing"}},
	}

	_, err := BuildDAG(resources)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared")
}

func TestBuildDAG_DuplicateAddress(t *testing.T) {
	resources := []*ir.ResourceSpec{
		{Kind: ir.KindRegistry, Name: "a"},
		{Kind: ir.KindRegistry, Name: "a"},
	}

	_, err := BuildDAG(resources)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestDependenciesAndDependents(t *testing.T) {
	resources := []*ir.ResourceSpec{
		{Kind: ir.KindAlertRule, Name: "a", DependsOn: []string{"insights.b", "action-group.c"}},
		{Kind: ir.KindInsights, Name: "b"},
		{Kind: ir.KindActionGroup, Name: "c"},
	}

	dag, err := BuildDAG(resources)
	require.NoError(t, err)

	deps := dag.Dependencies("alert-rule.a")
	assert.Len(t, deps, 2)
	assert.Contains(t, deps, "insights.b")
	assert.Contains(t, deps, "action-group.c")

	assert.Equal(t, []string{"alert-rule.a"}, dag.Dependents("insights.b"))
}

func TestExtractRefs(t *testing.T) {
	props := map[string]any{
		"workspaceId": "ref://workspace/logs/id",
		"name":        "web",
		"nested": map[string]any{
			"target": "ref://insights/web/id",
		},
		"list": []any{
			"ref://vault/secrets/vaultUri",
			"plain-string",
		},
	}

	refs := extractRefs(props)
	assert.Len(t, refs, 3)
	assert.Contains(t, refs, "ref://workspace/logs/id")
	assert.Contains(t, refs, "ref://insights/web/id")
	assert.Contains(t, refs, "ref://vault/secrets/vaultUri")
}

func indexOf(slice []string, item string) int {
	for i, s := range slice {
		if s == item {
			return i
		}
	}
	return -1
}
