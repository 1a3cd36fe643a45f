// Package coa classifies chart-of-accounts codes. Classification is
// pure: the same code always yields the same result, and malformed
// codes fall back to Expense rather than erroring.
package coa

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Side identifies the normal balance side of an account type.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// Classification is the result of classifying an account code.
type Classification struct {
	Type       AccountType
	NormalSide Side
	IsCurrent  bool
}

// Prefixes marking current assets and current liabilities for balance
// sheet placement.
const (
	currentAssetPrefix     = "11"
	currentLiabilityPrefix = "21"
)

// Classify maps an account code to its type, normal balance side, and
// current/non-current placement. The first digit decides the type
// (1 asset, 2 liability, 3 equity, 4 revenue, 5 expense); anything
// else defaults to Expense with a normal debit side.
func Classify(code string) Classification {
	if code == "" {
		return Classification{Type: AccountTypeExpense, NormalSide: SideDebit}
	}
	switch code[0] {
	case '1':
		return Classification{
			Type:       AccountTypeAsset,
			NormalSide: SideDebit,
			IsCurrent:  hasPrefix(code, currentAssetPrefix),
		}
	case '2':
		return Classification{
			Type:       AccountTypeLiability,
			NormalSide: SideCredit,
			IsCurrent:  hasPrefix(code, currentLiabilityPrefix),
		}
	case '3':
		return Classification{Type: AccountTypeEquity, NormalSide: SideCredit}
	case '4':
		return Classification{Type: AccountTypeRevenue, NormalSide: SideCredit}
	default:
		return Classification{Type: AccountTypeExpense, NormalSide: SideDebit}
	}
}

// TypeOf is a shorthand for Classify(code).Type.
func TypeOf(code string) AccountType {
	return Classify(code).Type
}

// IsTemporary reports whether the account closes to retained earnings
// at period end.
func IsTemporary(t AccountType) bool {
	return t == AccountTypeRevenue || t == AccountTypeExpense
}

func hasPrefix(code, prefix string) bool {
	return len(code) >= len(prefix) && code[:len(prefix)] == prefix
}
