package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
)

var (
	signingMethod = jwt.SigningMethodHS256

	ErrSigningKey   = errors.New("auth: jwt secret and issuer are required")
	ErrTokenSubject = errors.New("auth: token subject is not an account id")
)

// AccessTokenPayload is what the caller knows when minting a token.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Role      enums.AccountRole
	// JTI keys the server-side session; one is generated when empty.
	JTI string
}

// AccessTokenClaims is the bearer token body. The account id travels as
// the standard subject claim and is decoded into AccountID on parse.
type AccessTokenClaims struct {
	Role enums.AccountRole `json:"role"`
	jwt.RegisteredClaims

	AccountID uuid.UUID `json:"-"`
}

func (c *AccessTokenClaims) JTI() string {
	if c == nil {
		return ""
	}
	return c.ID
}

func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if cfg.Secret == "" || cfg.Issuer == "" {
		return "", ErrSigningKey
	}
	ttl := cfg.AccessTokenTTL()
	if ttl <= 0 {
		return "", fmt.Errorf("auth: token ttl must be positive, got %v", ttl)
	}
	if payload.AccountID == uuid.Nil {
		return "", errors.New("auth: account id is required")
	}
	if !payload.Role.IsValid() {
		return "", fmt.Errorf("auth: invalid role %q", payload.Role)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := AccessTokenClaims{
		Role: payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    cfg.Issuer,
			Subject:   payload.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and expiry, then resolves the
// subject to an account id.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" || cfg.Issuer == "" {
		return nil, ErrSigningKey
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return nil, ErrTokenSubject
	}
	claims.AccountID = id
	return claims, nil
}
