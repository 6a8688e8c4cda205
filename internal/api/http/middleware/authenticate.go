package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mnibras/user-manager-api/internal/api/http/handler"
	"github.com/mnibras/user-manager-api/internal/logger"
	"github.com/mnibras/user-manager-api/internal/model"
)

const principalContextKey = "auth.principal"

const (
	missingToken        = "Missing authorization token"
	invalidToken        = "Invalid authorization token"
	notEnoughPermission = "You do not have enough permission"
	authorizationPrefix = "Bearer "
)

// Authenticate validates bearer tokens and stores the asserted
// principal in the request context.
type Authenticate struct {
	tokens model.TokenManager
	logger *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens model.TokenManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, logger: logger}
}

// Handle parses the Authorization header, validates the token and
// injects the principal for downstream handlers.
func (m *Authenticate) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, authorizationPrefix) {
			return c.JSON(http.StatusUnauthorized, handler.NewResponse(http.StatusUnauthorized, missingToken))
		}

		principal, err := m.tokens.Parse(strings.TrimPrefix(header, authorizationPrefix))
		if err != nil {
			m.logger.Info("HTTP middleware: token rejected",
				"path", c.Request().URL.Path,
				"error", err.Error())
			return c.JSON(http.StatusUnauthorized, handler.NewResponse(http.StatusUnauthorized, invalidToken))
		}

		c.Set(principalContextKey, principal)
		return next(c)
	}
}

// RequireAuthority gates a route on a capability carried by the
// authenticated principal.
func (m *Authenticate) RequireAuthority(authority string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFromContext(c)
			if !ok || !principal.HasAuthority(authority) {
				return c.JSON(http.StatusForbidden, handler.NewResponse(http.StatusForbidden, notEnoughPermission))
			}
			return next(c)
		}
	}
}

// PrincipalFromContext returns the principal stored by Handle.
func PrincipalFromContext(c echo.Context) (model.Principal, bool) {
	principal, ok := c.Get(principalContextKey).(model.Principal)
	return principal, ok
}
