package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// armScope is the token audience for the ARM control plane.
const armScope = "https://management.azure.com/.default"

// newCredential builds the default credential chain (environment, managed
// identity, CLI) and probes it for an ARM token, so a missing login fails
// the run up front instead of on the first mutating call.
func newCredential(ctx context.Context) (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrNotLoggedIn, err)
	}

	_, err = cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{armScope},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrNotLoggedIn, err)
	}

	return cred, nil
}
