package engine

import (
	"fmt"
	"strings"
)

// refScheme prefixes references to another resource's output, in the form
// ref://kind/name/attribute (e.g. ref://workspace/logs/id).
const refScheme = "ref://"

// runState accumulates provider outputs per resource address during a run.
// It is the only state a run has; nothing is persisted.
type runState struct {
	outputs map[string]map[string]any
}

func newRunState() *runState {
	return &runState{outputs: make(map[string]map[string]any)}
}

func (s *runState) record(addr string, outputs map[string]any) {
	if outputs == nil {
		outputs = map[string]any{}
	}
	s.outputs[addr] = outputs
}

// resolve replaces ref:// strings in val with recorded outputs. Unresolvable
// references are returned unchanged so the provider surfaces a concrete
// error instead of a silent empty value.
func (s *runState) resolve(val any) any {
	switch v := val.(type) {
	case string:
		if !strings.HasPrefix(v, refScheme) {
			return v
		}
		addr, attr := splitRef(v)
		if outs, ok := s.outputs[addr]; ok {
			if resolved, ok := outs[attr]; ok {
				return resolved
			}
		}
		return v
	case map[string]any:
		resolved := make(map[string]any, len(v))
		for k, elem := range v {
			resolved[k] = s.resolve(elem)
		}
		return resolved
	case []any:
		resolved := make([]any, len(v))
		for i, elem := range v {
			resolved[i] = s.resolve(elem)
		}
		return resolved
	default:
		return v
	}
}

// resolveStringMap resolves ref:// values in a string-valued map, for the
// template's secrets block.
func (s *runState) resolveStringMap(m map[string]string) map[string]string {
	resolved := make(map[string]string, len(m))
	for k, v := range m {
		resolved[k] = fmt.Sprintf("%v", s.resolve(v))
	}
	return resolved
}

// refToAddr converts ref://kind/name/attribute to the address kind.name.
func refToAddr(ref string) string {
	addr, _ := splitRef(ref)
	return addr
}

func splitRef(ref string) (addr, attr string) {
	if !strings.HasPrefix(ref, refScheme) {
		return "", ""
	}
	parts := strings.SplitN(ref[len(refScheme):], "/", 3)
	if len(parts) < 2 {
		return "", ""
	}
	addr = fmt.Sprintf("%s.%s", parts[0], parts[1])
	if len(parts) == 3 {
		attr = parts[2]
	}
	return addr, attr
}
