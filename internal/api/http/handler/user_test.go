package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mnibras/user-manager-api/internal/mocks"
	"github.com/mnibras/user-manager-api/internal/model"
	"github.com/mnibras/user-manager-api/internal/service"
	"github.com/mnibras/user-manager-api/internal/testutil"
)

type handlerMocks struct {
	store    *mocks.UserStore
	storage  *mocks.Storage
	hasher   *mocks.PasswordHasher
	notifier *mocks.Notifier
	attempts *mocks.AttemptTracker
	tokens   *mocks.TokenManager
}

func newTestHandler(t *testing.T, tempImageBaseURL string) (*User, *handlerMocks) {
	t.Helper()

	m := &handlerMocks{
		store:    &mocks.UserStore{},
		storage:  &mocks.Storage{},
		hasher:   &mocks.PasswordHasher{},
		notifier: &mocks.Notifier{},
		attempts: &mocks.AttemptTracker{},
		tokens:   &mocks.TokenManager{},
	}

	log := testutil.MakeNoopLogger()
	users := service.NewUser(m.store, m.storage, m.hasher, m.notifier, log, "http://localhost:8080")
	auth := service.NewAuth(m.store, m.hasher, m.attempts, m.tokens, log)

	return NewUser(users, auth, m.storage, log, tempImageBaseURL), m
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestUser_Register(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByUsername", mock.Anything, "alee").Return(model.User{}, model.ErrNotFound)
	m.store.On("GetByEmail", mock.Anything, "a@x.com").Return(model.User{}, model.ErrNotFound)
	m.hasher.On("Hash", mock.Anything).Return("$hashed$", nil)
	m.store.On("Save", mock.Anything, mock.Anything).Return(model.User{ID: 1, Username: "alee", PasswordHash: "$hashed$", Role: model.RoleUser}, nil)
	m.notifier.On("SendGeneratedPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	c, rec := newJSONContext(http.MethodPost, "/user/register", `{"firstName":"Ann","lastName":"Lee","username":"alee","email":"a@x.com"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alee"`)
	// The hash must never appear in a response body.
	assert.NotContains(t, rec.Body.String(), "$hashed$")
}

func TestUser_Register_UsernameTaken(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByUsername", mock.Anything, "alee").Return(model.User{ID: 2}, nil)

	c, rec := newJSONContext(http.MethodPost, "/user/register", `{"username":"alee","email":"a@x.com"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgUsernameExists, decodeResponse(t, rec).Message)
}

func TestUser_Login(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByUsername", mock.Anything, "alee").Return(model.User{ID: 1, Username: "alee", PasswordHash: "$h$", Active: true, NotLocked: true}, nil)
	m.hasher.On("Verify", "secret", "$h$").Return(true)
	m.store.On("Save", mock.Anything, mock.Anything).Return(model.User{ID: 1, Username: "alee", Active: true, NotLocked: true}, nil)
	m.tokens.On("Generate", mock.Anything).Return("tok", nil)

	c, rec := newJSONContext(http.MethodPost, "/user/login", `{"username":"alee","password":"secret"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", rec.Header().Get(JWTTokenHeader))
	assert.Contains(t, rec.Body.String(), `"username":"alee"`)
}

func TestUser_Login_SameAnswerForUnknownUserAndWrongPassword(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)
	m.store.On("GetByUsername", mock.Anything, "alee").Return(model.User{ID: 1, Username: "alee", PasswordHash: "$h$", Active: true, NotLocked: true}, nil)
	m.hasher.On("Verify", "wrong", "$h$").Return(false)
	m.attempts.On("RecordFailure", "alee").Return()
	m.attempts.On("HasExceededMaxAttempts", "alee").Return(false)

	c, unknownRec := newJSONContext(http.MethodPost, "/user/login", `{"username":"ghost","password":"wrong"}`)
	require.NoError(t, h.Login(c))

	c, wrongRec := newJSONContext(http.MethodPost, "/user/login", `{"username":"alee","password":"wrong"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusBadRequest, unknownRec.Code)
	assert.Equal(t, unknownRec.Code, wrongRec.Code)
	assert.Equal(t, decodeResponse(t, unknownRec).Message, decodeResponse(t, wrongRec).Message)
	assert.Equal(t, msgIncorrectCredentials, decodeResponse(t, wrongRec).Message)
}

func TestUser_Login_Locked(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByUsername", mock.Anything, "alee").Return(model.User{ID: 1, Username: "alee", PasswordHash: "$h$", Active: true, NotLocked: false}, nil)
	m.attempts.On("HasExceededMaxAttempts", "alee").Return(true)

	c, rec := newJSONContext(http.MethodPost, "/user/login", `{"username":"alee","password":"secret"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgAccountLocked, decodeResponse(t, rec).Message)
}

func TestUser_Login_Disabled(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByUsername", mock.Anything, "alee").Return(model.User{ID: 1, Username: "alee", Active: false}, nil)

	c, rec := newJSONContext(http.MethodPost, "/user/login", `{"username":"alee","password":"secret"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgAccountDisabled, decodeResponse(t, rec).Message)
}

func TestUser_Find_NotFound(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)

	c, rec := newJSONContext(http.MethodGet, "/user/find/ghost", "")
	c.SetParamNames("username")
	c.SetParamValues("ghost")
	require.NoError(t, h.Find(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgNoUserByUsername+"ghost", decodeResponse(t, rec).Message)
}

func TestUser_ResetPassword(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByEmail", mock.Anything, "a@x.com").Return(model.User{ID: 1, Username: "alee", Email: "a@x.com"}, nil)
	m.hasher.On("Hash", mock.Anything).Return("$new$", nil)
	m.store.On("Save", mock.Anything, mock.Anything).Return(model.User{ID: 1, Username: "alee", Email: "a@x.com"}, nil)
	m.notifier.On("SendGeneratedPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	c, rec := newJSONContext(http.MethodGet, "/user/resetPassword/a@x.com", "")
	c.SetParamNames("email")
	c.SetParamValues("a@x.com")
	require.NoError(t, h.ResetPassword(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, emailSent+"a@x.com", decodeResponse(t, rec).Message)
}

func TestUser_ResetPassword_UnknownEmail(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByEmail", mock.Anything, "ghost@x.com").Return(model.User{}, model.ErrNotFound)

	c, rec := newJSONContext(http.MethodGet, "/user/resetPassword/ghost@x.com", "")
	c.SetParamNames("email")
	c.SetParamValues("ghost@x.com")
	require.NoError(t, h.ResetPassword(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgNoUserByEmail+"ghost@x.com", decodeResponse(t, rec).Message)
}

func TestUser_Delete(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("Delete", mock.Anything, int64(7)).Return(nil)

	c, rec := newJSONContext(http.MethodDelete, "/user/delete/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userDeleted, decodeResponse(t, rec).Message)
	m.store.AssertCalled(t, "Delete", mock.Anything, int64(7))
}

func TestUser_Add_MultipartWithImage(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.store.On("GetByUsername", mock.Anything, "bob").Return(model.User{}, model.ErrNotFound)
	m.store.On("GetByEmail", mock.Anything, "b@x.com").Return(model.User{}, model.ErrNotFound)
	m.hasher.On("Hash", mock.Anything).Return("$hashed$", nil)
	m.store.On("Save", mock.Anything, mock.Anything).Return(model.User{ID: 5, Username: "bob", Role: model.RoleAdmin}, nil)
	m.notifier.On("SendGeneratedPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Upload", mock.Anything, "bob.jpg", mock.Anything).Return(nil)

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	for field, value := range map[string]string{
		"firstName":   "Bob",
		"lastName":    "Roy",
		"username":    "bob",
		"email":       "b@x.com",
		"role":        "ROLE_ADMIN",
		"isActive":    "true",
		"isNonLocked": "true",
	} {
		require.NoError(t, form.WriteField(field, value))
	}
	part, err := form.CreateFormFile("profileImage", "bob.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8})
	require.NoError(t, err)
	require.NoError(t, form.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/user/add", body)
	req.Header.Set(echo.HeaderContentType, form.FormDataContentType())
	rec := httptest.NewRecorder()
	require.NoError(t, h.Add(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	m.storage.AssertCalled(t, "Upload", mock.Anything, "bob.jpg", mock.Anything)
}

func TestUser_ProfileImage(t *testing.T) {
	h, m := newTestHandler(t, "")

	m.storage.On("Download", mock.Anything, "alee.jpg").Return(io.NopCloser(bytes.NewReader([]byte("jpeg-bytes"))), nil)

	c, rec := newJSONContext(http.MethodGet, "/user/image/alee/alee.jpg", "")
	c.SetParamNames("username", "fileName")
	c.SetParamValues("alee", "alee.jpg")
	require.NoError(t, h.ProfileImage(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, profileImageMimeType, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestUser_TempProfileImage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alee", r.URL.Path)
		_, _ = w.Write([]byte("placeholder-bytes"))
	}))
	defer upstream.Close()

	h, _ := newTestHandler(t, upstream.URL+"/")

	c, rec := newJSONContext(http.MethodGet, "/user/image/profile/alee", "")
	c.SetParamNames("username")
	c.SetParamValues("alee")
	require.NoError(t, h.TempProfileImage(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "placeholder-bytes", rec.Body.String())
}
