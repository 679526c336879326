package engine

import (
	"context"
	"time"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/logging"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// ReconcileDelete removes every live resource in scope. See
// ReconcileDeleteWithCallback.
func (e *Engine) ReconcileDelete(ctx context.Context, scope string) ([]*ir.ReconciliationResult, error) {
	return e.ReconcileDeleteWithCallback(ctx, scope, nil)
}

// ReconcileDeleteWithCallback enumerates the live resources in scope (not
// the desired state, so drift is cleaned up too), deletes known substructure
// leaves-first, then the resources themselves, and finally begins deletion
// of the scope without waiting for it to finish. Absence anywhere is benign
// (NotFound); a single deletion failure is recorded and siblings continue,
// maximizing cleanup progress under partial failure.
//
// The returned error is non-nil only when enumeration itself fails before
// any deletion was attempted.
func (e *Engine) ReconcileDeleteWithCallback(ctx context.Context, scope string, callback EventCallback) ([]*ir.ReconciliationResult, error) {
	emit := func(event Event) {
		if callback != nil {
			callback(event)
		}
	}

	prov, err := e.registry.Get(e.defaultProvider)
	if err != nil {
		return nil, err
	}

	scopeRef := ir.ResourceRef{Kind: ir.KindScope, Name: scope}

	exists, err := prov.ScopeExists(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !exists {
		logging.Info("scope already absent", "scope", scope)
		return []*ir.ReconciliationResult{
			{Ref: &scopeRef, Outcome: ir.OutcomeNotFound},
		}, nil
	}

	refs, err := prov.List(ctx, scope)
	if err != nil {
		if provider.IsNotFound(err) {
			return []*ir.ReconciliationResult{
				{Ref: &scopeRef, Outcome: ir.OutcomeNotFound},
			}, nil
		}
		return nil, err
	}

	var results []*ir.ReconciliationResult
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, e.deleteTree(ctx, prov, scope, ref, emit)...)
	}

	// The scope itself goes last, fire-and-forget: provider-side cleanup
	// can take minutes and the run does not block on it.
	start := time.Now()
	emit(Event{Address: scopeRef.Address(), Action: "delete", Status: "started"})
	if err := prov.BeginDeleteScope(ctx, scope); err != nil {
		emit(Event{Address: scopeRef.Address(), Action: "delete", Status: "failed", Duration: time.Since(start), Err: err})
		results = append(results, &ir.ReconciliationResult{Ref: &scopeRef, Outcome: ir.OutcomeFailed, Err: err})
		return results, nil
	}
	emit(Event{Address: scopeRef.Address(), Action: "delete", Status: "completed", Duration: time.Since(start)})
	results = append(results, &ir.ReconciliationResult{Ref: &scopeRef, Outcome: ir.OutcomeDeleted})

	return results, nil
}

// deleteTree deletes ref and its substructure in reverse-dependency order:
// leaves first, level by level, the resource itself last (all tags, then all
// repositories, then the registry). Child enumeration failures degrade to
// deleting what was found.
func (e *Engine) deleteTree(ctx context.Context, prov provider.Provider, scope string, ref ir.ResourceRef, emit func(Event)) []*ir.ReconciliationResult {
	levels := [][]ir.ResourceRef{{ref}}
	for {
		var next []ir.ResourceRef
		for _, parent := range levels[len(levels)-1] {
			children, err := prov.Children(ctx, scope, parent)
			if err != nil && !provider.IsNotFound(err) {
				logging.Warn("child enumeration failed", "address", parent.Address(), "error", err)
			}
			next = append(next, children...)
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
	}

	var results []*ir.ReconciliationResult
	for i := len(levels) - 1; i >= 0; i-- {
		for _, target := range levels[i] {
			results = append(results, e.deleteOne(ctx, prov, scope, target, emit))
		}
	}
	return results
}

func (e *Engine) deleteOne(ctx context.Context, prov provider.Provider, scope string, ref ir.ResourceRef, emit func(Event)) *ir.ReconciliationResult {
	start := time.Now()
	emit(Event{Address: ref.Address(), Action: "delete", Status: "started"})

	err := RetryWithBackoff(ctx, e.Retry, func() error {
		return prov.Delete(ctx, scope, ref)
	}, IsTransientError)

	switch {
	case err == nil:
		logging.Info("resource deleted", "address", ref.Address(), "scope", scope)
		emit(Event{Address: ref.Address(), Action: "delete", Status: "completed", Duration: time.Since(start)})
		return &ir.ReconciliationResult{Ref: &ref, Outcome: ir.OutcomeDeleted}
	case provider.IsNotFound(err):
		// Already gone. Deletion must be safe to re-run.
		emit(Event{Address: ref.Address(), Action: "delete", Status: "completed", Duration: time.Since(start)})
		return &ir.ReconciliationResult{Ref: &ref, Outcome: ir.OutcomeNotFound}
	default:
		emit(Event{Address: ref.Address(), Action: "delete", Status: "failed", Duration: time.Since(start), Err: err})
		return &ir.ReconciliationResult{Ref: &ref, Outcome: ir.OutcomeFailed, Err: err}
	}
}
