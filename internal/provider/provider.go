// Package provider defines the typed client abstraction the reconciler
// drives. Concrete implementations live under providers/.
package provider

import (
	"context"

	"github.com/cloudforge-io/cloudforge/internal/ir"
)

// Provider is the control-plane client for one resource provider.
//
// All mutating methods must tolerate re-runs: Create is never called when
// Exists already reported the resource present, and Delete must report
// absence via ErrNotFound rather than failing.
type Provider interface {
	// Validate rejects a spec before any mutating call is issued.
	Validate(spec *ir.ResourceSpec) error

	// Exists probes for the resource by name, kind and scope.
	Exists(ctx context.Context, scope string, spec *ir.ResourceSpec) (bool, error)

	// Create provisions the resource and returns its outputs (identifiers,
	// endpoints, generated credentials).
	Create(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error)

	// Read returns the outputs of an existing resource.
	Read(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error)

	// Delete removes a live resource. Absence is ErrNotFound.
	Delete(ctx context.Context, scope string, ref ir.ResourceRef) error

	// List enumerates the live resources in a scope, drift included.
	// An absent scope is ErrNotFound.
	List(ctx context.Context, scope string) ([]ir.ResourceRef, error)

	// Children enumerates the substructure of a live resource (registry
	// repositories, repository tags, webhooks). Resources without
	// substructure return an empty slice.
	Children(ctx context.Context, scope string, ref ir.ResourceRef) ([]ir.ResourceRef, error)

	// ScopeExists probes for the enclosing scope itself.
	ScopeExists(ctx context.Context, scope string) (bool, error)

	// EnsureScope creates the enclosing scope if it is absent.
	EnsureScope(ctx context.Context, scope, location string) error

	// BeginDeleteScope starts deletion of the scope without waiting for it
	// to finish; provider-side cleanup can take minutes.
	BeginDeleteScope(ctx context.Context, scope string) error
}
