package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/shopdesk-backend/pkg/config"
)

// Access tokens are HS256 only. Anything else is rejected before the key is used.
var signingMethod = jwt.SigningMethodHS256

const clockSkew = 30 * time.Second

type tokenCodec struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

func newCodec(cfg config.JWTConfig) (tokenCodec, error) {
	if cfg.Secret == "" {
		return tokenCodec{}, errors.New("jwt: secret is required")
	}
	return tokenCodec{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    time.Duration(cfg.ExpirationMinutes) * time.Minute,
	}, nil
}

func (c tokenCodec) keyFor(t *jwt.Token) (any, error) {
	if t.Method != signingMethod {
		return nil, fmt.Errorf("jwt: unexpected alg %v", t.Header["alg"])
	}
	return c.key, nil
}

func (c tokenCodec) parse(raw string, opts ...jwt.ParserOption) (*AccessTokenClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(c.issuer),
	)
	claims := &AccessTokenClaims{}
	if _, err := jwt.NewParser(opts...).ParseWithClaims(strings.TrimSpace(raw), claims, c.keyFor); err != nil {
		return nil, err
	}
	return claims, nil
}

// MintAccessToken signs an access token valid from now for the configured
// number of minutes. A blank JTI gets a random one.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	c, err := newCodec(cfg)
	if err != nil {
		return "", err
	}
	switch {
	case c.issuer == "":
		return "", errors.New("jwt: issuer is required")
	case c.ttl <= 0:
		return "", errors.New("jwt: expiration minutes must be positive")
	}

	claims := AccessTokenClaims{
		UserID:  payload.UserID,
		Type:    payload.Type,
		IsStaff: payload.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatUint(payload.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        strings.TrimSpace(payload.JTI),
		},
	}
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
	if err := claims.Validate(); err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and expiry.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	c, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}
	return c.parse(raw, jwt.WithExpirationRequired(), jwt.WithLeeway(clockSkew))
}

// ParseAccessTokenAllowExpired verifies the signature but skips time checks,
// so a refresh can still read the jti of an expired token.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	c, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}
	return c.parse(raw, jwt.WithoutClaimsValidation())
}
