package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvaluator(t *testing.T) {
	// Evaluating a template needs the pkl binary on PATH, so the full
	// round trip is covered by integration runs rather than unit tests.
	// Construction alone must not touch the toolchain.
	e := NewEvaluator("/tmp/project")
	assert.NotNil(t, e)
	assert.Equal(t, "/tmp/project", e.projectDir)
}
