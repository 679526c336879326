package ir

import "fmt"

// Kind identifies the type of a provisioned resource.
type Kind string

const (
	KindRegistry     Kind = "registry"
	KindVault        Kind = "vault"
	KindInsights     Kind = "insights"
	KindWorkspace    Kind = "workspace"
	KindStorage      Kind = "storage"
	KindNetworkGroup Kind = "network-group"
	KindIdentity     Kind = "identity"
	KindAlertRule    Kind = "alert-rule"
	KindActionGroup  Kind = "action-group"

	// Child kinds only ever appear during deletion, when the substructure
	// of a live resource is enumerated.
	KindRepository Kind = "repository"
	KindTag        Kind = "tag"
	KindWebhook    Kind = "webhook"

	// KindScope is the enclosing resource group itself, reported once per
	// delete run.
	KindScope Kind = "scope"

	// KindUnknown covers drift: resources found in the scope that no
	// template ever declared.
	KindUnknown Kind = "unknown"
)

// ResourceSpec declares one desired resource.
type ResourceSpec struct {
	Kind       Kind           `pkl:"kind"`
	Name       string         `pkl:"name"`
	Location   string         `pkl:"location"`
	Provider   string         `pkl:"provider"`
	DependsOn  []string       `pkl:"dependsOn"`
	Properties map[string]any `pkl:"properties"`
}

// Address returns the canonical kind.name address of the spec.
func (s *ResourceSpec) Address() string {
	return fmt.Sprintf("%s.%s", s.Kind, s.Name)
}

// ResourceRef identifies a live resource discovered in a scope. Parent is
// set for child resources (a tag's parent is its repository, a repository's
// parent is its registry).
type ResourceRef struct {
	Kind   Kind
	Name   string
	ID     string
	Parent *ResourceRef
}

// Address returns the kind.name address of the ref.
func (r ResourceRef) Address() string {
	return fmt.Sprintf("%s.%s", r.Kind, r.Name)
}
