package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/apperr"
)

type pendingUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestSignParse_RoundTrip(t *testing.T) {
	m := NewJWTManager(JWTConfig{Issuer: "test", Secret: "s3cret", TTL: time.Hour})

	tok, exp, err := m.Sign("u-1", RoleUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, RoleUser, claims.Role)
}

func TestParse_WrongSecret(t *testing.T) {
	signer := NewJWTManager(JWTConfig{Secret: "a", TTL: time.Hour})
	verifier := NewJWTManager(JWTConfig{Secret: "b", TTL: time.Hour})

	tok, _, err := signer.Sign("u-1", RoleUser)
	require.NoError(t, err)

	_, err = verifier.Parse(tok)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestParse_Garbage(t *testing.T) {
	m := NewJWTManager(JWTConfig{Secret: "a", TTL: time.Hour})
	_, err := m.Parse("not.a.token")
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestActivation_BeforeAndAfterExpiry(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := NewJWTManager(JWTConfig{Secret: "act", TTL: time.Hour, Now: fixedClock(issued)})

	tok, err := SignActivation(signer, AudienceUserActivation, pendingUser{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	early := NewJWTManager(JWTConfig{Secret: "act", TTL: time.Hour, Now: fixedClock(issued.Add(59 * time.Minute))})
	got, err := ParseActivation[pendingUser](early, AudienceUserActivation, tok)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	late := NewJWTManager(JWTConfig{Secret: "act", TTL: time.Hour, Now: fixedClock(issued.Add(61 * time.Minute))})
	_, err = ParseActivation[pendingUser](late, AudienceUserActivation, tok)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestActivation_AudienceMustMatch(t *testing.T) {
	m := NewJWTManager(JWTConfig{Secret: "act", TTL: time.Hour})
	tok, err := SignActivation(m, AudienceUserActivation, pendingUser{Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = ParseActivation[pendingUser](m, AudienceSellerActivation, tok)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)

	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid, "activation token must not work as a session")
}

func TestEmptySecret(t *testing.T) {
	m := NewJWTManager(JWTConfig{TTL: time.Hour})

	_, _, err := m.Sign("victim", RoleUser)
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = SignActivation(m, AudienceUserActivation, pendingUser{})
	assert.ErrorIs(t, err, ErrNoSecret)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "victim",
			Audience:  jwt.ClaimStrings{AudienceSession},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(""))
	require.NoError(t, err)

	_, err = m.Parse(forged)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
