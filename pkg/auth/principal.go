package auth

import "github.com/angelmondragon/shopdesk-backend/pkg/enums"

// Principal is the authenticated caller handed to every service operation.
type Principal struct {
	UserID  uint64
	Type    enums.AccountType
	IsStaff bool
}

func (p Principal) IsShop() bool {
	return p.Type == enums.AccountTypeShop
}

func (p Principal) Authenticated() bool {
	return p.UserID != 0
}
