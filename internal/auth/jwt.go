package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"marketplace/internal/apperr"
)

const (
	RoleUser   = "user"
	RoleSeller = "seller"
)

// Audiences keep one kind of token from being accepted where another is
// expected, even when the signing secret is shared.
const (
	AudienceSession          = "session"
	AudienceUserActivation   = "user-activation"
	AudienceSellerActivation = "seller-activation"
)

var ErrNoSecret = errors.New("jwt secret is empty")

type JWTConfig struct {
	Issuer string
	Secret string
	TTL    time.Duration
	// Now overrides the clock used for issuing and validating tokens.
	Now func() time.Time
}

// JWTManager signs and verifies HS256 tokens with one shared secret.
// Session tokens and activation tokens use separate managers.
type JWTManager struct {
	cfg JWTConfig
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type activationClaims[T any] struct {
	Pending T `json:"pending"`
	jwt.RegisteredClaims
}

func NewJWTManager(cfg JWTConfig) *JWTManager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JWTManager{cfg: cfg}
}

func (m *JWTManager) TTL() time.Duration { return m.cfg.TTL }

func (m *JWTManager) registered(subject, audience string) jwt.RegisteredClaims {
	now := m.cfg.Now()
	return jwt.RegisteredClaims{
		Issuer:    m.cfg.Issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
	}
}

// Sign issues a session token for subjectID acting as role.
func (m *JWTManager) Sign(subjectID, role string) (string, time.Time, error) {
	claims := Claims{Role: role, RegisteredClaims: m.registered(subjectID, AudienceSession)}
	s, err := m.sign(claims)
	return s, claims.ExpiresAt.Time, err
}

// Parse verifies a session token. Any failure is apperr.ErrTokenInvalid.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenStr, AudienceSession, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// SignActivation embeds a pending registration in a short-lived token
// addressed to audience.
func SignActivation[T any](m *JWTManager, audience string, pending T) (string, error) {
	return m.sign(activationClaims[T]{Pending: pending, RegisteredClaims: m.registered("", audience)})
}

// ParseActivation returns the pending registration carried by tokenStr. A
// token issued for a different audience is rejected.
func ParseActivation[T any](m *JWTManager, audience, tokenStr string) (T, error) {
	claims := &activationClaims[T]{}
	if err := m.parse(tokenStr, audience, claims); err != nil {
		var zero T
		return zero, err
	}
	return claims.Pending, nil
}

func (m *JWTManager) sign(claims jwt.Claims) (string, error) {
	if m.cfg.Secret == "" {
		return "", ErrNoSecret
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
}

func (m *JWTManager) parse(tokenStr, audience string, claims jwt.Claims) error {
	if m.cfg.Secret == "" {
		return apperr.ErrTokenInvalid
	}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.cfg.Secret), nil
	}, jwt.WithTimeFunc(m.cfg.Now), jwt.WithExpirationRequired(), jwt.WithAudience(audience))
	if err != nil || !tok.Valid {
		return apperr.ErrTokenInvalid
	}
	return nil
}
