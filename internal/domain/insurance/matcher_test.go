package insurance

import (
	"testing"

	"github.com/google/uuid"
)

func ipresCatalog() Catalog {
	providerID := uuid.New()
	return Catalog{
		Providers: []Provider{
			{ID: providerID, Name: "IPRES", Active: true},
		},
		Policies: []Policy{
			{ID: uuid.New(), ProviderID: providerID, Name: "Standard", CoveragePct: 70, AnnualLimit: 500_000},
			{ID: uuid.New(), ProviderID: providerID, Name: "Premium", CoveragePct: 90, AnnualLimit: 2_000_000},
		},
	}
}

func TestFindMatch_CaseInsensitiveProviderAndHint(t *testing.T) {
	catalog := ipresCatalog()

	match, ok := FindMatch(catalog, "ipres", "premium")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Provider.Name != "IPRES" {
		t.Errorf("expected provider IPRES, got %s", match.Provider.Name)
	}
	if match.Policy.Name != "Premium" {
		t.Errorf("expected Premium policy, got %s", match.Policy.Name)
	}
}

func TestFindMatch_EmptyHintTakesFirstPolicy(t *testing.T) {
	catalog := ipresCatalog()

	match, ok := FindMatch(catalog, "IPRES", "")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Policy.Name != "Standard" {
		t.Errorf("expected first policy Standard, got %s", match.Policy.Name)
	}
}

func TestFindMatch_UnknownProvider(t *testing.T) {
	catalog := ipresCatalog()

	if _, ok := FindMatch(catalog, "Unknown Co", ""); ok {
		t.Error("expected no match for unknown provider")
	}
}

func TestFindMatch_NoSubstringHitFallsBackToFirst(t *testing.T) {
	catalog := ipresCatalog()

	match, ok := FindMatch(catalog, "IPRES", "platinum")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Policy.Name != "Standard" {
		t.Errorf("expected fallback to first policy, got %s", match.Policy.Name)
	}
}

func TestFindMatch_ProviderWithoutPolicies(t *testing.T) {
	catalog := Catalog{
		Providers: []Provider{{ID: uuid.New(), Name: "CNSS"}},
	}

	if _, ok := FindMatch(catalog, "CNSS", ""); ok {
		t.Error("expected no match for provider without policies")
	}
}

func TestFindMatch_EmptyProviderName(t *testing.T) {
	catalog := ipresCatalog()

	if _, ok := FindMatch(catalog, "", "premium"); ok {
		t.Error("expected no match for empty provider name")
	}
	if _, ok := FindMatch(catalog, "   ", ""); ok {
		t.Error("expected no match for blank provider name")
	}
}

func TestFindMatch_TieBreakByCatalogOrder(t *testing.T) {
	providerID := uuid.New()
	catalog := Catalog{
		Providers: []Provider{{ID: providerID, Name: "AXA"}},
		Policies: []Policy{
			{ID: uuid.New(), ProviderID: providerID, Name: "Famille Plus", CoveragePct: 60},
			{ID: uuid.New(), ProviderID: providerID, Name: "Famille Or", CoveragePct: 80},
		},
	}

	// Both policies contain the hint; the first in catalog order wins.
	match, ok := FindMatch(catalog, "AXA", "famille")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Policy.Name != "Famille Plus" {
		t.Errorf("expected first matching policy, got %s", match.Policy.Name)
	}
}
