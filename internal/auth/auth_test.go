package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("squats-every-day")
	require.NoError(t, err)
	assert.NotEqual(t, "squats-every-day", hashed)

	other, err := HashPassword("squats-every-day")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, other, "bcrypt salts each hash")

	assert.True(t, CheckPassword(hashed, "squats-every-day"))
	assert.False(t, CheckPassword(hashed, "wrong"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestGenerateAccessToken(t *testing.T) {
	t.Run("claims round trip", func(t *testing.T) {
		token, err := GenerateAccessToken(42, "coach@example.com", RoleInstructor, testSecret)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, 42, claims.UserID)
		assert.Equal(t, "coach@example.com", claims.Email)
		assert.Equal(t, RoleInstructor, claims.Role)
		assert.Equal(t, tokenTypeAccess, claims.TokenType)
		assert.Equal(t, jwtIssuer, claims.Issuer)
		assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), claims.ExpiresAt.Time, 5*time.Second)
	})

	t.Run("empty secret", func(t *testing.T) {
		token, err := GenerateAccessToken(1, "a@example.com", RoleClient, "")
		assert.ErrorIs(t, err, ErrEmptyJWTSecret)
		assert.Empty(t, token)
	})
}

func TestGenerateTokens(t *testing.T) {
	access, refresh, err := GenerateTokens(7, "client@example.com", RoleClient, "access-secret", "refresh-secret")
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	_, err = ValidateToken(access, "access-secret")
	assert.NoError(t, err)

	_, err = ValidateToken(refresh, "access-secret")
	assert.Error(t, err, "refresh token must not verify with the access secret")

	claims, err := ValidateRefreshToken(refresh, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	access, err := GenerateAccessToken(1, "a@example.com", RoleClient, testSecret)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(access, testSecret)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidateToken(t *testing.T) {
	sign := func(claims JWTClaims, method jwt.SigningMethod, key interface{}) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func(exp time.Time) JWTClaims {
		return JWTClaims{
			UserID:    1,
			Role:      RoleClient,
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  []string{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(exp),
			},
		}
	}

	t.Run("expired", func(t *testing.T) {
		token := sign(base(time.Now().Add(-time.Minute)), jwt.SigningMethodHS256, []byte(testSecret))
		_, err := ValidateToken(token, testSecret)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := base(time.Now().Add(time.Minute))
		claims.Issuer = "someone-else"
		token := sign(claims, jwt.SigningMethodHS256, []byte(testSecret))
		_, err := ValidateToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := base(time.Now())
		claims.ExpiresAt = nil
		token := sign(claims, jwt.SigningMethodHS256, []byte(testSecret))
		_, err := ValidateToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token := sign(base(time.Now().Add(time.Minute)), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)
		_, err := ValidateToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken("not.a.jwt", testSecret)
		assert.Error(t, err)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, err := ValidateToken("x", "")
		assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	})
}

func TestPrincipalRoles(t *testing.T) {
	assert.True(t, Principal{Role: RoleInstructor}.IsInstructor())
	assert.True(t, Principal{Role: RoleClient}.IsClient())
	assert.True(t, Principal{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Principal{Role: RoleClient}.IsInstructor())
}
