package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/models"
	"github.com/noah-isme/pal-tracker-api/internal/service"
)

const testSecret = "middleware-secret"

func signedToken(t *testing.T, role models.UserRole, secret string, expires time.Time) string {
	t.Helper()
	claims := models.JWTClaims{
		UserID: "user-1",
		Role:   role,
		Email:  "user@agu.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedRouter(metrics *service.MetricsService, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: testSecret})

	router := gin.New()
	router.Use(Metrics(metrics))
	group := router.Group("/", JWT(auth))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, string(CurrentUser(c).Role))
	})
	return router
}

func TestJWT(t *testing.T) {
	router := protectedRouter(nil)
	valid := signedToken(t, models.RoleTutor, testSecret, time.Now().Add(time.Hour))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"empty token", "Bearer  ", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signedToken(t, models.RoleTutor, "other", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", "Bearer " + signedToken(t, models.RoleTutor, testSecret, time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"valid", "bearer " + valid, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestJWTStoresClaims(t *testing.T) {
	router := protectedRouter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, models.RoleManager, testSecret, time.Now().Add(time.Hour)))

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Manager", rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	router := protectedRouter(nil, models.RoleAdmin, models.RoleManager)

	for role, status := range map[models.UserRole]int{
		models.RoleAdmin:   http.StatusOK,
		models.RoleManager: http.StatusOK,
		models.RoleTutor:   http.StatusForbidden,
		models.RoleStudent: http.StatusForbidden,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, role, testSecret, time.Now().Add(time.Hour)))
		router.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, string(role))
		if status == http.StatusForbidden {
			assert.Contains(t, rec.Body.String(), "FORBIDDEN")
		}
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	router := protectedRouter(metrics)
	router.GET("/programs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/programs/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/programs/:id",status="200"} 1`)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
}

func TestOptionalJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: testSecret})
	router := gin.New()
	router.GET("/", OptionalJWT(auth), func(c *gin.Context) {
		if claims := CurrentUser(c); claims != nil {
			c.String(http.StatusOK, claims.UserID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	for header, want := range map[string]string{
		"":               "anonymous",
		"Bearer garbage": "anonymous",
		"Bearer " + signedToken(t, models.RoleStudent, testSecret, time.Now().Add(time.Hour)): "user-1",
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
	}
}
