package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mnibras/user-manager-api/internal/logger"
	"github.com/mnibras/user-manager-api/internal/model"
	"github.com/mnibras/user-manager-api/internal/service"
)

// JWTTokenHeader is the response header carrying the issued token.
const JWTTokenHeader = "Jwt-Token"

const (
	emailSent            = "An email with a new password was sent to: "
	userDeleted          = "User deleted successfully"
	profileImageMimeType = "image/jpeg"
)

// User exposes the identity API over HTTP.
type User struct {
	users            *service.User
	auth             *service.Auth
	storage          model.Storage
	logger           *logger.Logger
	tempImageBaseURL string
	httpClient       *http.Client
}

// NewUser creates the User handler.
func NewUser(
	users *service.User,
	auth *service.Auth,
	storage model.Storage,
	logger *logger.Logger,
	tempImageBaseURL string,
) *User {
	return &User{
		users:            users,
		auth:             auth,
		storage:          storage,
		logger:           logger,
		tempImageBaseURL: tempImageBaseURL,
		httpClient:       http.DefaultClient,
	}
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// Register handles self-service registration.
func (h *User) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, msgInternalError)
	}

	user, err := h.users.Register(c.Request().Context(), req.FirstName, req.LastName, req.Username, req.Email)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login validates credentials and returns the user with the token in
// the Jwt-Token header. Unknown usernames and wrong passwords get the
// same answer so the endpoint does not confirm which usernames exist.
func (h *User) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, msgInternalError)
	}

	user, token, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, model.ErrUserNotFound) || errors.Is(err, model.ErrInvalidCredentials) {
		return errorJSON(c, http.StatusBadRequest, msgIncorrectCredentials)
	}
	if err != nil {
		return h.writeError(c, err)
	}

	c.Response().Header().Set(JWTTokenHeader, token)
	return c.JSON(http.StatusOK, user)
}

// Add creates a user with explicit role and flags from a multipart
// form, with an optional profile image.
func (h *User) Add(c echo.Context) error {
	image, err := h.formImage(c, "profileImage")
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, msgProcessingFile)
	}
	if image != nil {
		defer image.Close()
	}

	user, err := h.users.AddNew(c.Request().Context(), model.NewUserParams{
		FirstName:    c.FormValue("firstName"),
		LastName:     c.FormValue("lastName"),
		Username:     c.FormValue("username"),
		Email:        c.FormValue("email"),
		Role:         c.FormValue("role"),
		Active:       parseFormBool(c.FormValue("isActive")),
		NotLocked:    parseFormBool(c.FormValue("isNonLocked")),
		ProfileImage: readerOrNil(image),
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// Update rewrites the identity owning currentUsername from a multipart
// form, with an optional profile image.
func (h *User) Update(c echo.Context) error {
	image, err := h.formImage(c, "profileImage")
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, msgProcessingFile)
	}
	if image != nil {
		defer image.Close()
	}

	currentUsername := c.FormValue("currentUsername")

	user, err := h.users.Update(c.Request().Context(), model.UpdateUserParams{
		CurrentUsername: currentUsername,
		FirstName:       c.FormValue("firstName"),
		LastName:        c.FormValue("lastName"),
		Username:        c.FormValue("username"),
		Email:           c.FormValue("email"),
		Role:            c.FormValue("role"),
		Active:          parseFormBool(c.FormValue("isActive")),
		NotLocked:       parseFormBool(c.FormValue("isNonLocked")),
		ProfileImage:    readerOrNil(image),
	})
	if errors.Is(err, model.ErrUserNotFound) {
		return errorJSON(c, http.StatusBadRequest, msgNoUserByUsername+currentUsername)
	}
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// Find returns a single user by username.
func (h *User) Find(c echo.Context) error {
	username := c.Param("username")

	user, err := h.users.FindByUsername(c.Request().Context(), username)
	if errors.Is(err, model.ErrUserNotFound) {
		return errorJSON(c, http.StatusBadRequest, msgNoUserByUsername+username)
	}
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// List returns all users.
func (h *User) List(c echo.Context) error {
	users, err := h.users.GetUsers(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, users)
}

// ResetPassword replaces the password of the account owning the email
// and confirms the out-of-band delivery.
func (h *User) ResetPassword(c echo.Context) error {
	email := c.Param("email")

	err := h.users.ResetPassword(c.Request().Context(), email)
	if errors.Is(err, model.ErrEmailNotFound) {
		return errorJSON(c, http.StatusBadRequest, msgNoUserByEmail+email)
	}
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, NewResponse(http.StatusOK, emailSent+email))
}

// Delete removes a user by numeric ID. The user:delete capability is
// enforced by route middleware before this runs.
func (h *User) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, msgInternalError)
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, NewResponse(http.StatusOK, userDeleted))
}

// UpdateProfileImage replaces the profile image of an existing user.
func (h *User) UpdateProfileImage(c echo.Context) error {
	image, err := h.formImage(c, "profileImage")
	if err != nil || image == nil {
		return errorJSON(c, http.StatusInternalServerError, msgProcessingFile)
	}
	defer image.Close()

	username := c.FormValue("currentUsername")

	user, err := h.users.UpdateProfileImage(c.Request().Context(), username, image)
	if errors.Is(err, model.ErrUserNotFound) {
		return errorJSON(c, http.StatusBadRequest, msgNoUserByUsername+username)
	}
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// ProfileImage streams a stored profile image.
func (h *User) ProfileImage(c echo.Context) error {
	fileName := c.Param("fileName")

	object, err := h.storage.Download(c.Request().Context(), fileName)
	if err != nil {
		h.logger.Error("HTTP handler: failed to read profile image",
			"file_name", fileName,
			"error", err.Error())
		return errorJSON(c, http.StatusInternalServerError, msgProcessingFile)
	}
	defer object.Close()

	return c.Stream(http.StatusOK, profileImageMimeType, object)
}

// TempProfileImage proxies the placeholder image used before a real
// one is uploaded.
func (h *User) TempProfileImage(c echo.Context) error {
	username := c.Param("username")

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, h.tempImageBaseURL+username, nil)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, msgProcessingFile)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Error("HTTP handler: failed to fetch placeholder image",
			"username", username,
			"error", err.Error())
		return errorJSON(c, http.StatusInternalServerError, msgProcessingFile)
	}
	defer resp.Body.Close()

	return c.Stream(http.StatusOK, profileImageMimeType, resp.Body)
}

// formImage extracts an optional image file from a multipart form. A
// missing file is not an error.
func (h *User) formImage(c echo.Context, field string) (io.ReadCloser, error) {
	fileHeader, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	return file, nil
}

func parseFormBool(value string) bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}

// readerOrNil keeps a nil io.ReadCloser from becoming a non-nil
// io.Reader interface value.
func readerOrNil(rc io.ReadCloser) io.Reader {
	if rc == nil {
		return nil
	}
	return rc
}
