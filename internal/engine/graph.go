package engine

import (
	"fmt"
	"strings"

	"github.com/cloudforge-io/cloudforge/internal/ir"
)

// DAG is the dependency graph of a desired state, used to order creation
// (dependencies first) and derive the blocked subtree of a failure.
type DAG struct {
	nodes map[string]*dagNode
	order []string // topological order (creation order)
}

type dagNode struct {
	addr     string
	edges    []string // addresses this node depends on
	revEdges []string // addresses that depend on this node
}

// BuildDAG constructs a dependency graph from resource specs. Edges come
// from explicit dependsOn entries and from implicit ref:// references in
// properties. Unknown addresses in dependsOn are an error; a cycle is an
// error.
func BuildDAG(resources []*ir.ResourceSpec) (*DAG, error) {
	dag := &DAG{
		nodes: make(map[string]*dagNode),
	}

	for _, res := range resources {
		addr := res.Address()
		if _, dup := dag.nodes[addr]; dup {
			return nil, fmt.Errorf("duplicate resource address %s", addr)
		}
		dag.nodes[addr] = &dagNode{addr: addr}
	}

	for _, res := range resources {
		node := dag.nodes[res.Address()]

		for _, dep := range res.DependsOn {
			if _, ok := dag.nodes[dep]; !ok {
				return nil, fmt.Errorf("%s depends on undeclared resource %s", res.Address(), dep)
			}
			node.edges = append(node.edges, dep)
		}

		for _, ref := range extractRefs(res.Properties) {
			depAddr := refToAddr(ref)
			if depAddr == "" || depAddr == res.Address() {
				continue
			}
			if _, ok := dag.nodes[depAddr]; ok {
				node.edges = append(node.edges, depAddr)
			}
		}
	}

	// Build reverse edges in declaration order so peers stay in the order
	// the template declared them.
	for _, res := range resources {
		addr := res.Address()
		for _, dep := range dag.nodes[addr].edges {
			dag.nodes[dep].revEdges = append(dag.nodes[dep].revEdges, addr)
		}
	}

	order, err := dag.topoSort(resources)
	if err != nil {
		return nil, err
	}
	dag.order = order

	return dag, nil
}

// CreationOrder returns addresses in dependency-respecting creation order.
func (d *DAG) CreationOrder() []string {
	return d.order
}

// Dependencies returns the direct dependencies of an address.
func (d *DAG) Dependencies(addr string) []string {
	if node, ok := d.nodes[addr]; ok {
		return node.edges
	}
	return nil
}

// Dependents returns the addresses that directly depend on addr.
func (d *DAG) Dependents(addr string) []string {
	if node, ok := d.nodes[addr]; ok {
		return node.revEdges
	}
	return nil
}

// topoSort is Kahn's algorithm. The queue is seeded and grown in template
// declaration order, keeping the result deterministic.
func (d *DAG) topoSort(resources []*ir.ResourceSpec) ([]string, error) {
	inDegree := make(map[string]int, len(d.nodes))
	for addr, node := range d.nodes {
		inDegree[addr] = len(node.edges)
	}

	var queue []string
	for _, res := range resources {
		if inDegree[res.Address()] == 0 {
			queue = append(queue, res.Address())
		}
	}

	var sorted []string
	for len(queue) > 0 {
		addr := queue[0]
		queue = queue[1:]
		sorted = append(sorted, addr)

		for _, dependent := range d.nodes[addr].revEdges {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) != len(d.nodes) {
		return nil, fmt.Errorf("dependency cycle detected in resource graph")
	}

	return sorted, nil
}

// extractRefs collects all ref:// strings from a property value.
func extractRefs(v any) []string {
	var refs []string
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(val, refScheme) {
			refs = append(refs, val)
		}
	case map[string]any:
		for _, v := range val {
			refs = append(refs, extractRefs(v)...)
		}
	case []any:
		for _, v := range val {
			refs = append(refs, extractRefs(v)...)
		}
	}
	return refs
}
