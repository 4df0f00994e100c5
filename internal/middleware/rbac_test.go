package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/models"
)

func TestRequireRolesAllowsListedRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := newAuthContext("")
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleScheduler})

	RequireRoles(models.RoleAdmin, models.RoleScheduler)(c)
	require.False(t, c.IsAborted())
}

func TestRequireRolesForbidsOtherRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newAuthContext("")
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleViewer})

	RequireRoles(models.RoleAdmin, models.RoleScheduler)(c)
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newAuthContext("")

	RequireRoles(models.RoleAdmin)(c)
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
