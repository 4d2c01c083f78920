package middleware

import (
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"pettracker/app/domain"
)

// ContextKeyUserID is the echo context key under which the caller identity is stored.
const ContextKeyUserID = "userID"

// IdentityMiddleware resolves the caller identity from the Authorization header.
// Requests without a usable bearer token still proceed, scoped to the shared
// unauthenticated identity, so guests can browse but only see guest data.
type IdentityMiddleware struct {
	logger *slog.Logger
}

// NewIdentityMiddleware creates a new identity middleware
func NewIdentityMiddleware(logger *slog.Logger) *IdentityMiddleware {
	return &IdentityMiddleware{
		logger: logger,
	}
}

// ResolveIdentity extracts the subject claim from the bearer ID token.
// Signature verification happens upstream at the API gateway; here the token
// is only decoded to scope data access per user.
func (m *IdentityMiddleware) ResolveIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyUserID, domain.UnauthenticatedIdentity)

			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" || token == header {
				m.logger.Debug("malformed authorization header, treating as guest",
					"ip", c.RealIP())
				return next(c)
			}

			sub, err := subjectFromToken(token)
			if err != nil || sub == "" {
				m.logger.Debug("could not resolve token subject, treating as guest",
					"error", err,
					"ip", c.RealIP())
				return next(c)
			}

			c.Set(ContextKeyUserID, sub)
			return next(c)
		}
	}
}

func subjectFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", err
	}
	return claims.GetSubject()
}

// UserID returns the identity resolved for the request, falling back to the
// unauthenticated identity when the middleware did not run.
func UserID(c echo.Context) string {
	if id, ok := c.Get(ContextKeyUserID).(string); ok && id != "" {
		return id
	}
	return domain.UnauthenticatedIdentity
}
