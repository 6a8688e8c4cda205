package router

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/mnibras/user-manager-api/internal/api/http/handler"
	"github.com/mnibras/user-manager-api/internal/api/http/middleware"
	"github.com/mnibras/user-manager-api/internal/logger"
	"github.com/mnibras/user-manager-api/internal/model"
	"github.com/mnibras/user-manager-api/internal/service"
)

// Router wires the identity API routes and middleware.
type Router struct {
	userService      *service.User
	authService      *service.Auth
	storage          model.Storage
	tokens           model.TokenManager
	logger           *logger.Logger
	tempImageBaseURL string
}

// New creates a new Router instance.
func New(
	userService *service.User,
	authService *service.Auth,
	storage model.Storage,
	tokens model.TokenManager,
	logger *logger.Logger,
	tempImageBaseURL string,
) *Router {
	return &Router{
		userService:      userService,
		authService:      authService,
		storage:          storage,
		tokens:           tokens,
		logger:           logger,
		tempImageBaseURL: tempImageBaseURL,
	}
}

// Register builds the echo instance with all routes and middleware.
// Registration, login, password reset and image retrieval are public;
// everything else requires a valid bearer token, and delete
// additionally requires the user:delete capability.
func (r *Router) Register() *echo.Echo {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(logging.Handle)
	e.RouteNotFound("/*", handler.NotFoundHandler)

	h := handler.NewUser(r.userService, r.authService, r.storage, r.logger, r.tempImageBaseURL)

	user := e.Group("/user")
	user.POST("/register", h.Register)
	user.POST("/login", h.Login)
	user.GET("/resetPassword/:email", h.ResetPassword)
	user.GET("/image/:username/:fileName", h.ProfileImage)
	user.GET("/image/profile/:username", h.TempProfileImage)

	protected := user.Group("", authenticate.Handle)
	protected.GET("/list", h.List)
	protected.GET("/find/:username", h.Find)
	protected.POST("/add", h.Add)
	protected.POST("/update", h.Update)
	protected.POST("/updateProfileImage", h.UpdateProfileImage)
	protected.DELETE("/delete/:id", h.Delete, authenticate.RequireAuthority(model.AuthorityUserDelete))

	return e
}
