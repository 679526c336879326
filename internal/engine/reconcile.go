// Package engine implements the reconciliation loop: bring remote state to
// match a declared desired state (create mode) or remove everything in a
// scope (delete mode). Both modes tolerate re-runs.
package engine

import (
	"context"
	"time"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/logging"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// Event is a progress event emitted while reconciling.
type Event struct {
	Address  string
	Action   string // "create" or "delete"
	Status   string // "started", "completed", "failed", "skipped"
	Duration time.Duration
	Err      error
}

// EventCallback is called for each event if set.
type EventCallback func(event Event)

// Engine orchestrates resource reconciliation against a provider registry.
// Execution is strictly sequential: each step blocks on its network round
// trip before the next begins, so the run is resumable at any kill point.
type Engine struct {
	registry        *provider.Registry
	defaultProvider string

	// Retry applies to individual create/delete calls. Nil means defaults.
	Retry *RetryPolicy
}

func NewEngine(registry *provider.Registry, defaultProvider string) *Engine {
	return &Engine{
		registry:        registry,
		defaultProvider: defaultProvider,
	}
}

// ReconcileCreate ensures every resource in desired exists, in dependency
// order. See ReconcileCreateWithCallback.
func (e *Engine) ReconcileCreate(ctx context.Context, desired *ir.DesiredState) ([]*ir.ReconciliationResult, error) {
	return e.ReconcileCreateWithCallback(ctx, desired, nil)
}

// ReconcileCreateWithCallback walks the desired state in topological order
// of dependsOn. Resources already present are recorded AlreadyExists, which
// makes the whole operation idempotent under retry. A create failure blocks
// the failing resource's dependent subtree but independent branches continue
// to a terminal outcome.
//
// The returned error is non-nil only for fatal conditions that abort the run
// before or without partial progress (validation, scope setup); per-resource
// failures are reported in the result list.
func (e *Engine) ReconcileCreateWithCallback(ctx context.Context, desired *ir.DesiredState, callback EventCallback) ([]*ir.ReconciliationResult, error) {
	emit := func(event Event) {
		if callback != nil {
			callback(event)
		}
	}

	dag, err := BuildDAG(desired.Resources)
	if err != nil {
		return nil, err
	}

	specByAddr := make(map[string]*ir.ResourceSpec, len(desired.Resources))
	for _, spec := range desired.Resources {
		specByAddr[spec.Address()] = spec
	}

	// Validation pass: every spec is checked before the first mutating
	// call, so a rejected spec guarantees zero side effects.
	for _, spec := range desired.Resources {
		prov, err := e.providerFor(spec)
		if err != nil {
			return nil, err
		}
		if err := prov.Validate(spec); err != nil {
			return nil, err
		}
	}

	scopeProv, err := e.registry.Get(e.defaultProvider)
	if err != nil {
		return nil, err
	}
	if err := scopeProv.EnsureScope(ctx, desired.Scope, desired.Location); err != nil {
		return nil, err
	}

	state := newRunState()
	blocked := make(map[string]bool)
	results := make([]*ir.ReconciliationResult, 0, len(desired.Resources))

	for _, addr := range dag.CreationOrder() {
		spec := specByAddr[addr]

		if err := ctx.Err(); err != nil {
			// Killed mid-run: remote state stays partially reconciled,
			// which is safe because the run is idempotent.
			return results, err
		}

		if dep := firstBlockedDep(dag, blocked, addr); dep != "" {
			blocked[addr] = true
			emit(Event{Address: addr, Action: "create", Status: "skipped"})
			results = append(results, &ir.ReconciliationResult{
				Spec:    spec,
				Outcome: ir.OutcomeBlocked,
				Err:     &dependencyError{addr: addr, dep: dep},
			})
			continue
		}

		start := time.Now()
		emit(Event{Address: addr, Action: "create", Status: "started"})

		result := e.reconcileOne(ctx, desired.Scope, spec, state)
		results = append(results, result)

		if result.Outcome == ir.OutcomeFailed {
			blocked[addr] = true
			emit(Event{Address: addr, Action: "create", Status: "failed", Duration: time.Since(start), Err: result.Err})
			continue
		}

		state.record(addr, result.Outputs)
		emit(Event{Address: addr, Action: "create", Status: "completed", Duration: time.Since(start)})
	}

	return results, nil
}

// reconcileOne brings a single resource to Present: probe, then create if
// absent, or read back outputs if it already exists.
func (e *Engine) reconcileOne(ctx context.Context, scope string, spec *ir.ResourceSpec, state *runState) *ir.ReconciliationResult {
	prov, err := e.providerFor(spec)
	if err != nil {
		return &ir.ReconciliationResult{Spec: spec, Outcome: ir.OutcomeFailed, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	logging.Debug("reconciling resource", "address", spec.Address(), "scope", scope)

	exists, err := prov.Exists(ctx, scope, spec)
	if err != nil {
		return &ir.ReconciliationResult{Spec: spec, Outcome: ir.OutcomeFailed, Err: err}
	}

	resolved := e.resolveSpec(spec, state)

	if exists {
		outputs, err := prov.Read(ctx, scope, resolved)
		if err != nil {
			return &ir.ReconciliationResult{Spec: spec, Outcome: ir.OutcomeFailed, Err: err}
		}
		logging.Debug("resource already exists", "address", spec.Address())
		return &ir.ReconciliationResult{Spec: spec, Outcome: ir.OutcomeAlreadyExists, Outputs: outputs}
	}

	var outputs map[string]any
	err = RetryWithBackoff(ctx, e.Retry, func() error {
		var createErr error
		outputs, createErr = prov.Create(ctx, scope, resolved)
		return createErr
	}, IsTransientError)
	if err != nil {
		return &ir.ReconciliationResult{Spec: spec, Outcome: ir.OutcomeFailed, Err: err}
	}

	logging.Info("resource created", "address", spec.Address(), "scope", scope)
	return &ir.ReconciliationResult{Spec: spec, Outcome: ir.OutcomeCreated, Outputs: outputs}
}

// resolveSpec returns a copy of spec with ref:// properties replaced by the
// outputs recorded so far. The original spec is never mutated.
func (e *Engine) resolveSpec(spec *ir.ResourceSpec, state *runState) *ir.ResourceSpec {
	if len(spec.Properties) == 0 {
		return spec
	}
	resolved := *spec
	resolved.Properties = state.resolve(spec.Properties).(map[string]any)
	return &resolved
}

// ResolveOutputs resolves the template's output and secret values against
// the outputs produced by a create run.
func (e *Engine) ResolveOutputs(desired *ir.DesiredState, results []*ir.ReconciliationResult) (map[string]any, map[string]string) {
	state := newRunState()
	for _, res := range results {
		if res.Spec != nil && res.Succeeded() {
			state.record(res.Spec.Address(), res.Outputs)
		}
	}

	outputs := make(map[string]any, len(desired.Outputs))
	for k, v := range desired.Outputs {
		outputs[k] = state.resolve(v)
	}
	return outputs, state.resolveStringMap(desired.Secrets)
}

func (e *Engine) providerFor(spec *ir.ResourceSpec) (provider.Provider, error) {
	name := spec.Provider
	if name == "" {
		name = e.defaultProvider
	}
	return e.registry.Get(name)
}

// firstBlockedDep returns the address of a failed or blocked dependency of
// addr, or "" if all dependencies reached Present.
func firstBlockedDep(dag *DAG, blocked map[string]bool, addr string) string {
	for _, dep := range dag.Dependencies(addr) {
		if blocked[dep] {
			return dep
		}
	}
	return ""
}

type dependencyError struct {
	addr string
	dep  string
}

func (e *dependencyError) Error() string {
	return "skipped " + e.addr + ": dependency " + e.dep + " did not reach a usable state"
}
