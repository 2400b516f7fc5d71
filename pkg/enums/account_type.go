package enums

import (
	"fmt"
	"strings"
)

// AccountType distinguishes customers from supplier accounts.
type AccountType string

const (
	AccountTypeBuyer AccountType = "buyer"
	AccountTypeShop  AccountType = "shop"
)

var validAccountTypes = []AccountType{
	AccountTypeBuyer,
	AccountTypeShop,
}

func (a AccountType) String() string {
	return string(a)
}

func (a AccountType) IsValid() bool { return oneOf(a, validAccountTypes) }

// ParseAccountType converts raw input into an AccountType. Empty input means buyer.
func ParseAccountType(value string) (AccountType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return AccountTypeBuyer, nil
	}
	if t, err := parse("account type", normalized, validAccountTypes); err == nil {
		return t, nil
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
