package session

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidate(t *testing.T) {
	assert.NoError(t, Configure("test-secret", time.Hour))

	token, exp, err := GenerateToken("uma", true)
	assert.NoError(t, err)
	assert.True(t, exp > time.Now().Unix())

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "uma", claims.UserID)
	assert.True(t, claims.Admin)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	assert.NoError(t, Configure("one", time.Hour))
	token, _, err := GenerateToken("uma", false)
	assert.NoError(t, err)

	assert.NoError(t, Configure("two", time.Hour))
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	assert.NoError(t, Configure("test-secret", time.Hour))
	claims := &Claims{
		UserID: "uma",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	_, err = ValidateToken(token)
	assert.IsError(t, err, ErrSessionTokenInvalid)
}

func TestConfigure_RequiresSecret(t *testing.T) {
	assert.Error(t, Configure("", time.Hour))
}

func TestGenerateToken_RequiresUser(t *testing.T) {
	assert.NoError(t, Configure("test-secret", 0))
	_, _, err := GenerateToken("", false)
	assert.Error(t, err)
}
