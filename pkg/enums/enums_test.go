package enums

import "testing"

func TestParseBillingCycle(t *testing.T) {
	for _, value := range []string{"weekly", "monthly", "quarterly", "yearly"} {
		cycle, err := ParseBillingCycle(value)
		if err != nil {
			t.Fatalf("expected %q to parse: %v", value, err)
		}
		if !cycle.IsValid() {
			t.Fatalf("parsed cycle %q should be valid", cycle)
		}
	}
	if _, err := ParseBillingCycle("biweekly"); err == nil {
		t.Fatal("expected error for unknown cycle")
	}
}

func TestParseCategory(t *testing.T) {
	if _, err := ParseCategory("streaming"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseCategory("crypto"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestParseSubscriptionStatus(t *testing.T) {
	status, err := ParseSubscriptionStatus("cancelled")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled, got %q", status)
	}
	if _, err := ParseSubscriptionStatus("paused"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseAlertType(t *testing.T) {
	for _, value := range []string{"price_increase", "duplicate", "upcoming_renewal", "trial_ending", "unused"} {
		if _, err := ParseAlertType(value); err != nil {
			t.Fatalf("expected %q to parse: %v", value, err)
		}
	}
	if _, err := ParseAlertType("renewal"); err == nil {
		t.Fatal("expected error for unknown alert type")
	}
}

func TestParseCurrencyDefaultsAreValid(t *testing.T) {
	if !CurrencyUSD.IsValid() {
		t.Fatal("USD must be valid")
	}
	if _, err := ParseCurrency("JPY"); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
}
