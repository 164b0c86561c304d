package domain

import (
	"errors"
	"testing"
)

func TestParseAsset_WithDecimals(t *testing.T) {
	a, err := ParseAsset("1000.000 TKN")
	if err != nil {
		t.Fatalf("ParseAsset failed: %v", err)
	}

	if a.Amount != 1000000 {
		t.Errorf("Amount mismatch: got %d, want %d", a.Amount, 1000000)
	}
	if a.Symbol.Precision != 3 {
		t.Errorf("Precision mismatch: got %d, want 3", a.Symbol.Precision)
	}
	if a.Symbol.Code != "TKN" {
		t.Errorf("Code mismatch: got %s, want TKN", a.Symbol.Code)
	}
}

func TestParseAsset_ZeroPrecision(t *testing.T) {
	a, err := ParseAsset("1000 CERO")
	if err != nil {
		t.Fatalf("ParseAsset failed: %v", err)
	}

	if a.Amount != 1000 {
		t.Errorf("Amount mismatch: got %d, want 1000", a.Amount)
	}
	if a.Symbol.Precision != 0 {
		t.Errorf("Precision mismatch: got %d, want 0", a.Symbol.Precision)
	}
}

func TestParseAsset_Negative(t *testing.T) {
	a, err := ParseAsset("-1.000 TKN")
	if err != nil {
		t.Fatalf("ParseAsset failed: %v", err)
	}

	if a.Amount != -1000 {
		t.Errorf("Amount mismatch: got %d, want -1000", a.Amount)
	}
}

func TestParseAsset_RoundTripString(t *testing.T) {
	for _, s := range []string{"1000.000 TKN", "0.001 TKN", "-1.500 TKN", "1000 CERO", "0 CERO", "100.00000000 RAMCORE"} {
		a, err := ParseAsset(s)
		if err != nil {
			t.Fatalf("ParseAsset(%q) failed: %v", s, err)
		}
		if got := a.String(); got != s {
			t.Errorf("String mismatch: got %q, want %q", got, s)
		}
	}
}

func TestParseAsset_Invalid(t *testing.T) {
	for _, s := range []string{"", "100", "100 tkn", "100 TOOLONGCODE", "1. TKN", "1.0000000000000000000 TKN", "x TKN"} {
		if _, err := ParseAsset(s); err == nil {
			t.Errorf("ParseAsset(%q) expected error, got nil", s)
		}
	}
}

func TestParseAsset_MaxMagnitude(t *testing.T) {
	a, err := ParseAsset("4611686018427387903 TKN")
	if err != nil {
		t.Fatalf("ParseAsset failed: %v", err)
	}
	if a.Amount != MaxAssetAmount {
		t.Errorf("Amount mismatch: got %d, want %d", a.Amount, MaxAssetAmount)
	}

	if _, err := ParseAsset("4611686018427387904 TKN"); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("Expected ErrAmountOverflow, got %v", err)
	}
}

func TestAssetValidate_Overflow(t *testing.T) {
	sym := Symbol{Precision: 0, Code: "NKT"}

	a := Asset{Amount: MaxAssetAmount + 1, Symbol: sym}
	if err := a.Validate(); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("Expected ErrAmountOverflow, got %v", err)
	}

	a = Asset{Amount: MaxAssetAmount, Symbol: sym}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate failed at bound: %v", err)
	}
}

func TestAssetAdd(t *testing.T) {
	sym := Symbol{Precision: 3, Code: "TKN"}

	sum, err := Asset{Amount: 500, Symbol: sym}.Add(Asset{Amount: 250, Symbol: sym})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if sum.Amount != 750 {
		t.Errorf("Sum mismatch: got %d, want 750", sum.Amount)
	}
}

func TestAssetAdd_SymbolMismatch(t *testing.T) {
	a := Asset{Amount: 1, Symbol: Symbol{Precision: 3, Code: "TKN"}}
	b := Asset{Amount: 1, Symbol: Symbol{Precision: 0, Code: "TKN"}}

	if _, err := a.Add(b); err == nil {
		t.Error("Expected symbol mismatch error, got nil")
	}
}

func TestAssetAdd_Overflow(t *testing.T) {
	sym := Symbol{Precision: 0, Code: "TKN"}

	if _, err := (Asset{Amount: MaxAssetAmount, Symbol: sym}).Add(Asset{Amount: 1, Symbol: sym}); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("Expected ErrAmountOverflow, got %v", err)
	}
}

func TestAssetSub(t *testing.T) {
	sym := Symbol{Precision: 3, Code: "TKN"}

	diff, err := Asset{Amount: 500, Symbol: sym}.Sub(Asset{Amount: 200, Symbol: sym})
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if diff.Amount != 300 {
		t.Errorf("Diff mismatch: got %d, want 300", diff.Amount)
	}
}
