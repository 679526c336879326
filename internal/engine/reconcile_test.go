package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
	"github.com/cloudforge-io/cloudforge/providers/fake"
)

func newTestEngine(prov *fake.Provider) *Engine {
	registry := provider.NewRegistry()
	registry.Register("fake", prov)
	eng := NewEngine(registry, "fake")
	eng.Retry = &RetryPolicy{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return eng
}

func webAppState(scope string) *ir.DesiredState {
	return &ir.DesiredState{
		Scope:    scope,
		Location: "westeurope",
		Resources: []*ir.ResourceSpec{
			{Kind: ir.KindRegistry, Name: "r1"},
			{Kind: ir.KindVault, Name: "v1"},
			{Kind: ir.KindWorkspace, Name: "w1"},
			{Kind: ir.KindInsights, Name: "i1", Properties: map[string]any{
				"workspaceId": "ref://workspace/w1/id",
			}},
		},
	}
}

func TestReconcileCreate_IsIdempotent(t *testing.T) {
	prov := fake.New()
	eng := newTestEngine(prov)
	desired := webAppState("web-prod")

	results, err := eng.ReconcileCreate(context.Background(), desired)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, res := range results {
		assert.Equal(t, ir.OutcomeCreated, res.Outcome, res.Address())
	}

	// Second run must converge without touching anything.
	prov.ResetCounters()
	results, err = eng.ReconcileCreate(context.Background(), desired)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, res := range results {
		assert.Equal(t, ir.OutcomeAlreadyExists, res.Outcome, res.Address())
	}
	assert.Zero(t, prov.MutatingCalls, "second run must not mutate")
}

func TestReconcileCreate_DependencyOrder(t *testing.T) {
	prov := fake.New()
	eng := newTestEngine(prov)

	_, err := eng.ReconcileCreate(context.Background(), webAppState("web-prod"))
	require.NoError(t, err)

	posW := indexOf(prov.CreateOrder, "workspace.w1")
	posI := indexOf(prov.CreateOrder, "insights.i1")
	require.GreaterOrEqual(t, posW, 0)
	require.GreaterOrEqual(t, posI, 0)
	assert.Less(t, posW, posI, "workspace create must complete before the insights create starts")
}

func TestReconcileCreate_RefResolution(t *testing.T) {
	prov := fake.New()
	eng := newTestEngine(prov)

	results, err := eng.ReconcileCreate(context.Background(), webAppState("web-prod"))
	require.NoError(t, err)

	var workspaceID, resolvedRef any
	for _, res := range results {
		switch res.Spec.Address() {
		case "workspace.w1":
			workspaceID = res.Outputs["id"]
		case "insights.i1":
			resolvedRef = res.Outputs["workspaceId"]
		}
	}
	require.NotNil(t, workspaceID)
	assert.Equal(t, workspaceID, resolvedRef, "ref:// property should resolve to the dependency's output")
}

func TestReconcileCreate_FailureBlocksDependents(t *testing.T) {
	prov := fake.New()
	prov.FailCreates["registry.a"] = errors.New("quota exceeded")
	eng := newTestEngine(prov)

	desired := &ir.DesiredState{
		Scope:    "web-prod",
		Location: "westeurope",
		Resources: []*ir.ResourceSpec{
			{Kind: ir.KindRegistry, Name: "a"},
			{Kind: ir.KindAlertRule, Name: "b", DependsOn: []string{"registry.a"}},
			{Kind: ir.KindVault, Name: "c"},
		},
	}

	results, err := eng.ReconcileCreate(context.Background(), desired)
	require.NoError(t, err, "per-resource failures must not abort the run")
	require.Len(t, results, 3)

	byAddr := make(map[string]*ir.ReconciliationResult)
	for _, res := range results {
		byAddr[res.Spec.Address()] = res
	}

	assert.Equal(t, ir.OutcomeFailed, byAddr["registry.a"].Outcome)
	assert.Equal(t, ir.OutcomeBlocked, byAddr["alert-rule.b"].Outcome)
	assert.Error(t, byAddr["alert-rule.b"].Err)
	assert.Equal(t, ir.OutcomeCreated, byAddr["vault.c"].Outcome, "independent resources still reach a terminal outcome")

	assert.NotContains(t, prov.CreateOrder, "alert-rule.b", "blocked resources are never attempted")
}

func TestReconcileCreate_BlockedCascades(t *testing.T) {
	prov := fake.New()
	prov.FailCreates["workspace.w"] = errors.New("quota exceeded")
	eng := newTestEngine(prov)

	desired := &ir.DesiredState{
		Scope:    "web-prod",
		Location: "westeurope",
		Resources: []*ir.ResourceSpec{
			{Kind: ir.KindWorkspace, Name: "w"},
			{Kind: ir.KindInsights, Name: "i", DependsOn: []string{"workspace.w"}},
			{Kind: ir.KindAlertRule, Name: "a", DependsOn: []string{"insights.i"}},
		},
	}

	results, err := eng.ReconcileCreate(context.Background(), desired)
	require.NoError(t, err)

	outcomes := make(map[string]ir.Outcome)
	for _, res := range results {
		outcomes[res.Spec.Address()] = res.Outcome
	}
	assert.Equal(t, ir.OutcomeFailed, outcomes["workspace.w"])
	assert.Equal(t, ir.OutcomeBlocked, outcomes["insights.i"])
	assert.Equal(t, ir.OutcomeBlocked, outcomes["alert-rule.a"], "blocking propagates through the whole subtree")
}

func TestReconcileCreate_ValidationAbortsBeforeMutation(t *testing.T) {
	prov := fake.New()
	eng := newTestEngine(prov)

	desired := &ir.DesiredState{
		Scope:    "web-prod",
		Location: "westeurope",
		Resources: []*ir.ResourceSpec{
			{Kind: ir.KindRegistry, Name: "ok"},
			{Kind: ir.KindVault, Name: ""}, // rejected
		},
	}

	_, err := eng.ReconcileCreate(context.Background(), desired)
	require.Error(t, err)

	var verr *provider.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Zero(t, prov.MutatingCalls, "a rejected template must leave zero side effects")
}

func TestReconcileCreate_ResumesAfterPartialRun(t *testing.T) {
	prov := fake.New()
	prov.FailCreates["vault.v1"] = errors.New("quota exceeded")
	eng := newTestEngine(prov)
	desired := webAppState("web-prod")

	results, err := eng.ReconcileCreate(context.Background(), desired)
	require.NoError(t, err)

	outcomes := make(map[string]ir.Outcome)
	for _, res := range results {
		outcomes[res.Spec.Address()] = res.Outcome
	}
	assert.Equal(t, ir.OutcomeFailed, outcomes["vault.v1"])

	// The fix lands, the same command is re-run. Survivors are found, only
	// the failed resource is created.
	delete(prov.FailCreates, "vault.v1")
	prov.ResetCounters()

	results, err = eng.ReconcileCreate(context.Background(), desired)
	require.NoError(t, err)

	outcomes = make(map[string]ir.Outcome)
	for _, res := range results {
		outcomes[res.Spec.Address()] = res.Outcome
	}
	assert.Equal(t, ir.OutcomeCreated, outcomes["vault.v1"])
	assert.Equal(t, ir.OutcomeAlreadyExists, outcomes["registry.r1"])
	assert.Equal(t, []string{"vault.v1"}, prov.CreateOrder)
}

func TestReconcileCreate_EmitsEvents(t *testing.T) {
	prov := fake.New()
	eng := newTestEngine(prov)

	var events []Event
	_, err := eng.ReconcileCreateWithCallback(context.Background(), webAppState("web-prod"), func(event Event) {
		events = append(events, event)
	})
	require.NoError(t, err)

	// One started and one completed event per resource.
	started, completed := 0, 0
	for _, event := range events {
		assert.Equal(t, "create", event.Action)
		switch event.Status {
		case "started":
			started++
		case "completed":
			completed++
		}
	}
	assert.Equal(t, 4, started)
	assert.Equal(t, 4, completed)
}

func TestResolveOutputs(t *testing.T) {
	prov := fake.New()
	eng := newTestEngine(prov)

	desired := webAppState("web-prod")
	desired.Outputs = map[string]any{
		"registryId": "ref://registry/r1/id",
		"static":     "unchanged",
	}
	desired.Secrets = map[string]string{
		"APP-INSIGHTS-KEY": "ref://insights/i1/id",
	}

	results, err := eng.ReconcileCreate(context.Background(), desired)
	require.NoError(t, err)

	outputs, secretValues := eng.ResolveOutputs(desired, results)
	assert.Equal(t, "/scopes/web-prod/registry.r1", outputs["registryId"])
	assert.Equal(t, "unchanged", outputs["static"])
	assert.Equal(t, "/scopes/web-prod/insights.i1", secretValues["APP-INSIGHTS-KEY"])
}

func TestReconcileCreate_ContextCancelled(t *testing.T) {
	prov := fake.New()
	eng := newTestEngine(prov)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// EnsureScope runs before the loop, so the run stops at the first
	// resource with partial results and the context error.
	results, err := eng.ReconcileCreate(ctx, webAppState("web-prod"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
