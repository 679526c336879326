package azure

import (
	"fmt"
	"regexp"

	"github.com/cloudforge-io/cloudforge/internal/ir"
	"github.com/cloudforge-io/cloudforge/internal/provider"
)

// Azure naming rules for the resource kinds we provision. Checked before
// any mutating call so a bad name never leaves partial state behind.
var (
	registryNameRe = regexp.MustCompile(`^[a-zA-Z0-9]{5,50}$`)
	vaultNameRe    = regexp.MustCompile(`^[a-zA-Z](?:[a-zA-Z0-9-]{1,22})[a-zA-Z0-9]$`)
	storageNameRe  = regexp.MustCompile(`^[a-z0-9]{3,24}$`)
	genericNameRe  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,78}[a-zA-Z0-9_]$`)
)

func (p *Provider) Validate(spec *ir.ResourceSpec) error {
	if spec.Name == "" {
		return &provider.ValidationError{Address: spec.Address(), Reason: "name must not be empty"}
	}

	switch spec.Kind {
	case ir.KindRegistry:
		if !registryNameRe.MatchString(spec.Name) {
			return &provider.ValidationError{
				Address: spec.Address(),
				Reason:  "registry names must be 5-50 alphanumeric characters",
			}
		}
	case ir.KindVault:
		if !vaultNameRe.MatchString(spec.Name) {
			return &provider.ValidationError{
				Address: spec.Address(),
				Reason:  "vault names must be 3-24 characters, alphanumeric and hyphens, starting with a letter",
			}
		}
	case ir.KindStorage:
		if !storageNameRe.MatchString(spec.Name) {
			return &provider.ValidationError{
				Address: spec.Address(),
				Reason:  "storage account names must be 3-24 lowercase alphanumeric characters",
			}
		}
	case ir.KindInsights, ir.KindWorkspace, ir.KindNetworkGroup,
		ir.KindIdentity, ir.KindAlertRule, ir.KindActionGroup:
		if !genericNameRe.MatchString(spec.Name) {
			return &provider.ValidationError{
				Address: spec.Address(),
				Reason:  fmt.Sprintf("invalid %s name", spec.Kind),
			}
		}
	default:
		return &provider.ValidationError{
			Address: spec.Address(),
			Reason:  fmt.Sprintf("unsupported resource kind %q", spec.Kind),
		}
	}

	return nil
}
