package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
)

type AccessTokenPayload struct {
	UserID  uint64
	Type    enums.AccountType
	IsStaff bool
	JTI     string
}

// AccessTokenClaims is the body of every access token.
type AccessTokenClaims struct {
	UserID  uint64            `json:"user_id"`
	Type    enums.AccountType `json:"type"`
	IsStaff bool              `json:"is_staff,omitempty"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks during parsing and
// before signing.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == 0 {
		return errors.New("jwt: user id is required")
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("jwt: invalid account type %q", c.Type)
	}
	return nil
}

func (c *AccessTokenClaims) Principal() Principal {
	return Principal{UserID: c.UserID, Type: c.Type, IsStaff: c.IsStaff}
}
