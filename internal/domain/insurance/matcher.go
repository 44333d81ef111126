package insurance

import (
	"strings"

	"github.com/google/uuid"
)

// Catalog is the ordered provider/policy reference data the matcher runs
// against. Slice order is insertion order; ties are broken by it.
type Catalog struct {
	Providers []Provider
	Policies  []Policy
}

// PoliciesFor returns the policies of one provider, preserving catalog order.
func (c Catalog) PoliciesFor(providerID uuid.UUID) []Policy {
	var out []Policy
	for _, p := range c.Policies {
		if p.ProviderID == providerID {
			out = append(out, p)
		}
	}
	return out
}

// Match is a resolved provider/policy pair.
type Match struct {
	Provider Provider
	Policy   Policy
}

// FindMatch resolves a free-text provider name and optional policy-type hint
// against the catalog. The provider must match exactly, case-insensitively;
// no provider is ever fabricated. Among the provider's policies, a non-empty
// hint selects the first whose name contains it as a case-insensitive
// substring, otherwise the first policy in catalog order wins. A provider
// without policies yields no match. First-match with catalog-order tie-break
// is the defined behavior, not an accident.
func FindMatch(catalog Catalog, providerName, policyTypeHint string) (Match, bool) {
	name := strings.TrimSpace(providerName)
	if name == "" {
		return Match{}, false
	}

	var provider *Provider
	for i := range catalog.Providers {
		if strings.EqualFold(catalog.Providers[i].Name, name) {
			provider = &catalog.Providers[i]
			break
		}
	}
	if provider == nil {
		return Match{}, false
	}

	policies := catalog.PoliciesFor(provider.ID)
	if len(policies) == 0 {
		return Match{}, false
	}

	hint := strings.ToLower(strings.TrimSpace(policyTypeHint))
	if hint != "" {
		for _, p := range policies {
			if strings.Contains(strings.ToLower(p.Name), hint) {
				return Match{Provider: *provider, Policy: p}, true
			}
		}
	}

	return Match{Provider: *provider, Policy: policies[0]}, true
}
