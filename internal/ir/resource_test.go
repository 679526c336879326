package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddresses(t *testing.T) {
	spec := &ResourceSpec{Kind: KindRegistry, Name: "main"}
	assert.Equal(t, "registry.main", spec.Address())

	registry := ResourceRef{Kind: KindRegistry, Name: "main"}
	repo := ResourceRef{Kind: KindRepository, Name: "app", Parent: &registry}
	assert.Equal(t, "repository.app", repo.Address())
	assert.Equal(t, "registry.main", repo.Parent.Address())
}

func TestResultAddress(t *testing.T) {
	withSpec := &ReconciliationResult{Spec: &ResourceSpec{Kind: KindVault, Name: "v"}}
	assert.Equal(t, "vault.v", withSpec.Address())

	withRef := &ReconciliationResult{Ref: &ResourceRef{Kind: KindScope, Name: "rg"}}
	assert.Equal(t, "scope.rg", withRef.Address())

	empty := &ReconciliationResult{}
	assert.Equal(t, "", empty.Address())
}

func TestResultSucceeded(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    bool
	}{
		{OutcomeCreated, true},
		{OutcomeAlreadyExists, true},
		{OutcomeDeleted, true},
		{OutcomeNotFound, true},
		{OutcomeFailed, false},
		{OutcomeBlocked, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			res := &ReconciliationResult{Outcome: tt.outcome, Err: errors.New("x")}
			assert.Equal(t, tt.want, res.Succeeded())
		})
	}
}
