package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pettracker/app/domain"
)

func bearerToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestIdentityMiddleware_ResolveIdentity(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantUserID string
	}{
		{
			name:       "bearer token subject",
			authHeader: "Bearer " + bearerToken(t, "us-east-1:user-abc"),
			wantUserID: "us-east-1:user-abc",
		},
		{
			name:       "no header falls back to guest",
			authHeader: "",
			wantUserID: domain.UnauthenticatedIdentity,
		},
		{
			name:       "malformed header falls back to guest",
			authHeader: "Token xyz",
			wantUserID: domain.UnauthenticatedIdentity,
		},
		{
			name:       "undecodable token falls back to guest",
			authHeader: "Bearer not-a-jwt",
			wantUserID: domain.UnauthenticatedIdentity,
		},
		{
			name:       "token without subject falls back to guest",
			authHeader: "Bearer " + bearerToken(t, ""),
			wantUserID: domain.UnauthenticatedIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/items/pets", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			mw := NewIdentityMiddleware(slog.Default())

			var captured string
			handler := mw.ResolveIdentity()(func(c echo.Context) error {
				captured = UserID(c)
				return c.NoContent(http.StatusOK)
			})

			require.NoError(t, handler(c))
			assert.Equal(t, tt.wantUserID, captured)
		})
	}
}

func TestUserID_DefaultsWithoutMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, domain.UnauthenticatedIdentity, UserID(c))
}
