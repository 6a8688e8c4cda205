package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mnibras/user-manager-api/internal/model"
)

const (
	msgAccountLocked        = "Your account has been locked. Please contact administrator"
	msgIncorrectCredentials = "username / Password incorrect. Please try again"
	msgAccountDisabled      = "Your account has been disabled. If this is an error, please contact administrator"
	msgUsernameExists       = "Username already exists"
	msgEmailExists          = "Email already exists"
	msgNoUserByUsername     = "No user found by username: "
	msgNoUserByEmail        = "No user found for email: "
	msgUnknownRole          = "Unknown role"
	msgInternalError        = "An error occurred while processing the request"
	msgProcessingFile       = "Error occurred while processing the file"
	msgNoMapping            = "There is no mapping for this URL"
)

// errorJSON writes a Response with the given status and message.
func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, NewResponse(code, message))
}

// writeError maps domain errors to API responses. Errors carrying a
// username or email in their message are mapped by the calling handler
// instead, which knows the identifier.
func (h *User) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrUsernameTaken):
		return errorJSON(c, http.StatusBadRequest, msgUsernameExists)
	case errors.Is(err, model.ErrEmailTaken):
		return errorJSON(c, http.StatusBadRequest, msgEmailExists)
	case errors.Is(err, model.ErrUnknownRole):
		return errorJSON(c, http.StatusBadRequest, msgUnknownRole)
	case errors.Is(err, model.ErrAccountLocked):
		return errorJSON(c, http.StatusUnauthorized, msgAccountLocked)
	case errors.Is(err, model.ErrAccountDisabled):
		return errorJSON(c, http.StatusBadRequest, msgAccountDisabled)
	default:
		h.logger.Error("HTTP handler: request failed",
			"path", c.Request().URL.Path,
			"error", err.Error())
		return errorJSON(c, http.StatusInternalServerError, msgInternalError)
	}
}

// NotFoundHandler answers requests for unmapped URLs.
func NotFoundHandler(c echo.Context) error {
	return errorJSON(c, http.StatusNotFound, msgNoMapping)
}
