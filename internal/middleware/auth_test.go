package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("middleware-test-secret-0123456789abcdef")

func sign(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{"sub": "user-1", "role": role, "exp": time.Now().Add(time.Hour).Unix()}
}

func newRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireRole(secret, roles...), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID)+":"+c.GetString(ContextUserRole))
	})
	return r
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		roles  []string
		header string
		cookie string
		status int
		body   string
	}{
		{name: "missing token", status: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", status: http.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + sign(t, []byte("other"), validClaims("staff")), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "u", "role": "staff", "exp": time.Now().Add(-time.Minute).Unix()}), status: http.StatusUnauthorized},
		{name: "no role claim", header: "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "u"}), status: http.StatusForbidden},
		{name: "role not allowed", roles: []string{"manager"}, header: "Bearer " + sign(t, secret, validClaims("staff")), status: http.StatusForbidden},
		{name: "allowed via header", roles: []string{"manager"}, header: "Bearer " + sign(t, secret, validClaims("manager")), status: http.StatusOK, body: "user-1:manager"},
		{name: "any role when none listed", header: "Bearer " + sign(t, secret, validClaims("staff")), status: http.StatusOK, body: "user-1:staff"},
		{name: "allowed via cookie", roles: []string{"staff"}, cookie: sign(t, secret, validClaims("staff")), status: http.StatusOK, body: "user-1:staff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			newRouter(tt.roles...).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestTokenCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	SetTokenCookie(c, "abc", time.Hour, true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, accessTokenCookie, cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}
