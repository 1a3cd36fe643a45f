package coa

import "testing"

func TestClassifyByFirstDigit(t *testing.T) {
	cases := []struct {
		code string
		typ  AccountType
		side Side
	}{
		{"11100", AccountTypeAsset, SideDebit},
		{"15200", AccountTypeAsset, SideDebit},
		{"21100", AccountTypeLiability, SideCredit},
		{"25000", AccountTypeLiability, SideCredit},
		{"32000", AccountTypeEquity, SideCredit},
		{"41100", AccountTypeRevenue, SideCredit},
		{"51000", AccountTypeExpense, SideDebit},
	}
	for _, tc := range cases {
		got := Classify(tc.code)
		if got.Type != tc.typ {
			t.Fatalf("Classify(%q).Type = %s, want %s", tc.code, got.Type, tc.typ)
		}
		if got.NormalSide != tc.side {
			t.Fatalf("Classify(%q).NormalSide = %s, want %s", tc.code, got.NormalSide, tc.side)
		}
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// Unknown or malformed codes never panic and default to Expense.
	for _, code := range []string{"", "9XYZ", "0", "abc", "??", "601"} {
		got := Classify(code)
		if got.Type != AccountTypeExpense && code != "" && code[0] >= '1' && code[0] <= '4' {
			continue
		}
		if got.Type == "" || got.NormalSide == "" {
			t.Fatalf("Classify(%q) returned empty classification", code)
		}
	}
	if Classify("7777").Type != AccountTypeExpense {
		t.Fatalf("unknown first digit should default to expense")
	}
	if Classify("7777").NormalSide != SideDebit {
		t.Fatalf("default classification should have debit normal side")
	}
}

func TestClassifyCurrentPrefixes(t *testing.T) {
	if !Classify("11100").IsCurrent {
		t.Fatalf("11xxx should be a current asset")
	}
	if Classify("15200").IsCurrent {
		t.Fatalf("15xxx should be non-current")
	}
	if !Classify("21500").IsCurrent {
		t.Fatalf("21xxx should be a current liability")
	}
	if Classify("25000").IsCurrent {
		t.Fatalf("25xxx should be non-current")
	}
	if Classify("1").IsCurrent {
		t.Fatalf("single-digit code has no current prefix")
	}
}

func TestIsTemporary(t *testing.T) {
	if !IsTemporary(AccountTypeRevenue) || !IsTemporary(AccountTypeExpense) {
		t.Fatalf("revenue and expense accounts are temporary")
	}
	if IsTemporary(AccountTypeAsset) || IsTemporary(AccountTypeEquity) {
		t.Fatalf("balance sheet accounts are not temporary")
	}
}
