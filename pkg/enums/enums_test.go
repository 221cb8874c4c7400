package enums

import "testing"

func TestParseTransactionMode(t *testing.T) {
	cases := map[string]TransactionMode{
		"buy":    TransactionModeBuy,
		" RENT ": TransactionModeRent,
		"Buy":    TransactionModeBuy,
	}
	for raw, want := range cases {
		got, err := ParseTransactionMode(raw)
		if err != nil {
			t.Fatalf("ParseTransactionMode(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseTransactionMode(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseTransactionMode("lease"); err == nil {
		t.Fatal("expected lease to be rejected")
	}
}

func TestOrderStatusAndRoleValidity(t *testing.T) {
	if !OrderStatusPending.IsValid() {
		t.Fatal("pending should be valid")
	}
	if OrderStatus("shipped").IsValid() {
		t.Fatal("shipped should be invalid")
	}
	if _, err := ParseUserRole("admin"); err != nil {
		t.Fatalf("admin should parse: %v", err)
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatal("owner should be rejected")
	}
}
