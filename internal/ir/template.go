package ir

// Template is the evaluated form of a declarative infrastructure document.
// Outputs and Secrets may contain ref:// strings that are resolved against
// provider outputs after a successful create run.
type Template struct {
	Resources []*ResourceSpec   `pkl:"resources"`
	Outputs   map[string]any    `pkl:"outputs"`
	Secrets   map[string]string `pkl:"secrets"`
}

// DesiredState is one invocation's declared infrastructure. It is built
// once from the evaluated template plus the invocation's scope settings and
// never persisted: the remote cloud account is the only durable state.
type DesiredState struct {
	Scope     string
	Location  string
	Resources []*ResourceSpec
	Outputs   map[string]any
	Secrets   map[string]string
}
