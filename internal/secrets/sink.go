// Package secrets writes generated configuration values into a key/value
// secret store. The store is a write-only sink the run owns: values flow in,
// nothing is read back.
package secrets

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// Sink stores named secret values.
type Sink interface {
	Put(ctx context.Context, name, value string) error
}

// KeyVaultSink writes secrets to an Azure Key Vault via its data plane.
type KeyVaultSink struct {
	client *azsecrets.Client
}

// NewKeyVaultSink opens a sink against the vault at vaultURI.
func NewKeyVaultSink(vaultURI string, cred azcore.TokenCredential) (*KeyVaultSink, error) {
	client, err := azsecrets.NewClient(vaultURI, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create key vault client: %w", err)
	}
	return &KeyVaultSink{client: client}, nil
}

func (s *KeyVaultSink) Put(ctx context.Context, name, value string) error {
	_, err := s.client.SetSecret(ctx, name, azsecrets.SetSecretParameters{
		Value: to.Ptr(value),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to set secret %s: %w", name, err)
	}
	return nil
}

// PutAll writes every entry of values into the sink, stopping at the first
// failure.
func PutAll(ctx context.Context, sink Sink, values map[string]string) error {
	for name, value := range values {
		if err := sink.Put(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}
