package azure

import (
	"fmt"
	"strings"
)

func lower(s string) string {
	return strings.ToLower(s)
}

// stringProp returns a string property or the fallback when absent.
func stringProp(props map[string]any, key, fallback string) string {
	if v, ok := props[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return fallback
}

// boolProp returns a bool property or the fallback when absent or untyped.
func boolProp(props map[string]any, key string, fallback bool) bool {
	if v, ok := props[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// int32Prop returns an integer property or the fallback when absent.
func int32Prop(props map[string]any, key string, fallback int32) int32 {
	switch v := props[key].(type) {
	case int:
		return int32(v)
	case int32:
		return v
	case int64:
		return int32(v)
	case float64:
		return int32(v)
	}
	return fallback
}

// float64Prop returns a numeric property or the fallback when absent.
func float64Prop(props map[string]any, key string, fallback float64) float64 {
	switch v := props[key].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return fallback
}

// stringSliceProp returns a list-of-strings property, empty when absent.
func stringSliceProp(props map[string]any, key string) []string {
	raw, ok := props[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, fmt.Sprintf("%v", v))
	}
	return out
}
