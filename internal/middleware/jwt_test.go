package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/service"
)

const testSecret = "unit-test-secret"

func signedToken(t *testing.T, secret string, role models.UserRole) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID:   "user-1",
		Role:     role,
		FullName: "Test Actor",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthContext(authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/schedules", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c.Request = req
	return c, w
}

func TestJWTAcceptsValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(testSecret, nil)

	c, _ := newAuthContext("Bearer " + signedToken(t, testSecret, models.RoleScheduler))
	JWT(tokens)(c)

	require.False(t, c.IsAborted())
	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims := value.(*models.JWTClaims)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleScheduler, claims.Role)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(testSecret, nil)

	c, w := newAuthContext("")
	JWT(tokens)(c)

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(testSecret, nil)

	c, w := newAuthContext("Token abc")
	JWT(tokens)(c)

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsBadSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(testSecret, nil)

	c, w := newAuthContext("Bearer " + signedToken(t, "other-secret", models.RoleAdmin))
	JWT(tokens)(c)

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
