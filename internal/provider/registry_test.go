package provider

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-io/cloudforge/internal/ir"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("azure")
	assert.Error(t, err)

	registry.Register("azure", nil)
	p, err := registry.Get("azure")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("read failed: %w", ErrNotFound)))
	assert.False(t, IsNotFound(fmt.Errorf("other error")))
	assert.False(t, IsNotFound(nil))
}

func TestValidationError(t *testing.T) {
	spec := &ir.ResourceSpec{Kind: ir.KindRegistry, Name: "bad name"}
	err := &ValidationError{Address: spec.Address(), Reason: "invalid characters"}
	assert.Contains(t, err.Error(), "registry.bad name")
	assert.Contains(t, err.Error(), "invalid characters")
}
