package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, 0)

	for _, userID := range []string{"1", "8c6f8b0e-6f0a-4d6e-9d2e-6a1f0f7d3c11", "user with spaces"} {
		token, err := svc.Issue(userID)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.ID)
	}
}

func TestIssue_NoExpiryByDefault(t *testing.T) {
	svc := NewTokenService(testSecret, 0)

	token, err := svc.Issue("42")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.Nil(t, claims.IssuedAt)

	// Same claims, same secret: same token.
	again, err := svc.Issue("42")
	require.NoError(t, err)
	assert.Equal(t, token, again)
}

func TestVerify_LongAfterIssue(t *testing.T) {
	svc := NewTokenService(testSecret, 0)
	token, err := svc.Issue("42")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.ID)
}

func TestVerify_InvalidSecret(t *testing.T) {
	token, err := NewTokenService(testSecret, 0).Issue("789")
	require.NoError(t, err)

	claims, err := NewTokenService("wrong-secret", 0).Verify(token)

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MalformedToken(t *testing.T) {
	svc := NewTokenService(testSecret, 0)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty token", token: ""},
		{name: "Random string", token: "not-a-valid-jwt-token"},
		{name: "Incomplete JWT", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Verify(tt.token)

			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "1"})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := NewTokenService(testSecret, 0).Verify(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestVerify_RejectsOtherHMACAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{ID: "1"})
	tokenString, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenService(testSecret, 0).Verify(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsEmptyID(t *testing.T) {
	svc := NewTokenService(testSecret, 0)
	token, err := svc.Issue("")
	require.NoError(t, err)

	_, err = svc.Verify(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiration_WithTTL(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue("888")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, "888", claims.ID)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }

	claims, err = svc.Verify(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestGetUserIDFromContext_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Set(UserIDKey, "user-123")

	userID, err := GetUserIDFromContext(c)

	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestGetUserIDFromContext_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	userID, err := GetUserIDFromContext(c)

	assert.Error(t, err)
	assert.Empty(t, userID)
	assert.Contains(t, err.Error(), "user ID not found in context")
}

func TestGetUserIDFromContext_InvalidType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Set(UserIDKey, 42)

	userID, err := GetUserIDFromContext(c)

	assert.Error(t, err)
	assert.Empty(t, userID)
	assert.Contains(t, err.Error(), "invalid user ID type")
}

func BenchmarkIssue(b *testing.B) {
	svc := NewTokenService(testSecret, 0)
	for i := 0; i < b.N; i++ {
		svc.Issue("123")
	}
}

func BenchmarkVerify(b *testing.B) {
	svc := NewTokenService(testSecret, 0)
	token, _ := svc.Issue("123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.Verify(token)
	}
}
