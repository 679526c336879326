// Package fake is an in-memory provider for the test suite. It simulates
// existence, creation and deletion against a map and records every call so
// tests can assert ordering and mutation counts.
package fake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

type Provider struct {
	mu sync.Mutex

	scopes    map[string]bool
	resources map[string]map[string]map[string]any // scope -> addr -> outputs
	children  map[string][]ir.ResourceRef          // addr -> direct children

	// FailCreates injects a create error per address.
	FailCreates map[string]error
	// FailDeletes injects a delete error per address.
	FailDeletes map[string]error

	// Call records, in invocation order.
	CreateOrder []string
	DeleteOrder []string
	ExistsCalls int
	// MutatingCalls counts Create and Delete invocations that reached the
	// provider (EnsureScope creations included).
	MutatingCalls int
}

var _ provider.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		scopes:      make(map[string]bool),
		resources:   make(map[string]map[string]map[string]any),
		children:    make(map[string][]ir.ResourceRef),
		FailCreates: make(map[string]error),
		FailDeletes: make(map[string]error),
	}
}

func (p *Provider) Validate(spec *ir.ResourceSpec) error {
	if spec.Name == "" {
		return &provider.ValidationError{Address: spec.Address(), Reason: "name must not be empty"}
	}
	if spec.Kind == "" {
		return &provider.ValidationError{Address: spec.Address(), Reason: "kind must not be empty"}
	}
	return nil
}

func (p *Provider) Exists(ctx context.Context, scope string, spec *ir.ResourceSpec) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ExistsCalls++
	_, ok := p.resources[scope][spec.Address()]
	return ok, nil
}

func (p *Provider) Create(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	addr := spec.Address()
	p.MutatingCalls++
	p.CreateOrder = append(p.CreateOrder, addr)

	if err := p.FailCreates[addr]; err != nil {
		return nil, err
	}

	outputs := map[string]any{
		"id":   fmt.Sprintf("/scopes/%s/%s", scope, addr),
		"name": spec.Name,
	}
	for k, v := range spec.Properties {
		outputs[k] = v
	}

	if p.resources[scope] == nil {
		p.resources[scope] = make(map[string]map[string]any)
	}
	p.resources[scope][addr] = outputs
	return outputs, nil
}

func (p *Provider) Read(ctx context.Context, scope string, spec *ir.ResourceSpec) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	outputs, ok := p.resources[scope][spec.Address()]
	if !ok {
		return nil, provider.ErrNotFound
	}
	return outputs, nil
}

func (p *Provider) Delete(ctx context.Context, scope string, ref ir.ResourceRef) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	addr := ref.Address()
	p.MutatingCalls++
	p.DeleteOrder = append(p.DeleteOrder, addr)

	if err := p.FailDeletes[addr]; err != nil {
		return err
	}

	if _, ok := p.children[addr]; ok {
		delete(p.children, addr)
		return nil
	}
	if _, ok := p.resources[scope][addr]; !ok {
		return provider.ErrNotFound
	}
	delete(p.resources[scope], addr)
	return nil
}

func (p *Provider) List(ctx context.Context, scope string) ([]ir.ResourceRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.scopes[scope] {
		return nil, provider.ErrNotFound
	}

	var refs []ir.ResourceRef
	for _, ref := range p.listOrder(scope) {
		refs = append(refs, ref)
	}
	return refs, nil
}

func (p *Provider) Children(ctx context.Context, scope string, ref ir.ResourceRef) ([]ir.ResourceRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.children[ref.Address()], nil
}

func (p *Provider) ScopeExists(ctx context.Context, scope string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scopes[scope], nil
}

func (p *Provider) EnsureScope(ctx context.Context, scope, location string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.scopes[scope] {
		p.MutatingCalls++
		p.scopes[scope] = true
	}
	return nil
}

func (p *Provider) BeginDeleteScope(ctx context.Context, scope string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.scopes[scope] {
		return provider.ErrNotFound
	}
	p.MutatingCalls++
	delete(p.scopes, scope)
	delete(p.resources, scope)
	return nil
}

// SeedResource installs a live resource directly, bypassing call recording.
func (p *Provider) SeedResource(scope string, ref ir.ResourceRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scopes[scope] = true
	if p.resources[scope] == nil {
		p.resources[scope] = make(map[string]map[string]any)
	}
	p.resources[scope][ref.Address()] = map[string]any{"id": ref.ID, "name": ref.Name}
}

// SeedChildren installs substructure under a resource address.
func (p *Provider) SeedChildren(parent ir.ResourceRef, children ...ir.ResourceRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.children[parent.Address()] = append(p.children[parent.Address()], children...)
}

// ResetCounters clears call records between reconciliation runs.
func (p *Provider) ResetCounters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CreateOrder = nil
	p.DeleteOrder = nil
	p.ExistsCalls = 0
	p.MutatingCalls = 0
}

// listOrder returns live refs for a scope in a stable order: insertion
// order is not tracked, so sort by address.
func (p *Provider) listOrder(scope string) []ir.ResourceRef {
	var addrs []string
	for addr := range p.resources[scope] {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	refs := make([]ir.ResourceRef, 0, len(addrs))
	for _, addr := range addrs {
		kind, name, _ := strings.Cut(addr, ".")
		refs = append(refs, ir.ResourceRef{
			Kind: ir.Kind(kind),
			Name: name,
			ID:   fmt.Sprintf("/scopes/%s/%s", scope, addr),
		})
	}
	return refs
}
