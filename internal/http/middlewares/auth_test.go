package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func invoke(t *testing.T, authHeader string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c
}

func TestJWTAuth_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"user_id": "u-123",
		"role":    "employee",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	rec, c := invoke(t, "Bearer "+token, JWTAuth(testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-123", c.Get(ContextUserID))
	assert.Equal(t, "employee", c.Get(ContextRole))
}

func TestJWTAuth_Rejections(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{
		"user_id": "u-123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := func() string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u-123"})
		signed, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)
		return signed
	}()
	missingUser := signToken(t, jwt.MapClaims{"role": "admin"})

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"garbage token", "Bearer not.a.token"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
		{"missing user_id claim", "Bearer " + missingUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := invoke(t, tc.header, JWTAuth(testSecret))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	adminToken := signToken(t, jwt.MapClaims{"user_id": "u-1", "role": "admin"})
	employeeToken := signToken(t, jwt.MapClaims{"user_id": "u-2", "role": "employee"})

	rec, _ := invoke(t, "Bearer "+adminToken, JWTAuth(testSecret), RequireAdmin())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = invoke(t, "Bearer "+employeeToken, JWTAuth(testSecret), RequireAdmin())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
