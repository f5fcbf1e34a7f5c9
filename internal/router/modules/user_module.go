package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wander-api/wander/internal/container"
	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/internal/domain/repository"
	handlers "github.com/wander-api/wander/internal/interface/http"
	"github.com/wander-api/wander/internal/interface/middleware"
)

// UserModule wires the account routes.
// Public:    POST /api/users/signup, POST /api/users/login, GET /api/users/logout,
//            POST /api/users/forgot-password, PATCH /api/users/reset-password/:token
// Protected: GET /api/users/me, PATCH /api/users/update-me, DELETE /api/users/delete-me,
//            POST /api/users/me/photo, PATCH /api/users/update-my-password
// Admin:     GET /api/users, GET/PATCH/DELETE /api/users/:id (admin, lead-guide)
type UserModule struct {
	Auth  *handlers.AuthHandler
	Users *handlers.UserHandler
	Repo  repository.UserRepository
}

func NewUserModule(auth *handlers.AuthHandler, users *handlers.UserHandler, repo repository.UserRepository) *UserModule {
	return &UserModule{Auth: auth, Users: users, Repo: repo}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	signupLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	forgotLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/users/signup", signupLimiter, m.Auth.Signup)
	rg.POST("/users/login", loginLimiter, m.Auth.Login)
	rg.GET("/users/logout", m.Auth.Logout)
	rg.POST("/users/forgot-password", forgotLimiter, m.Auth.ForgotPassword)
	rg.PATCH("/users/reset-password/:token", resetLimiter, m.Auth.ResetPassword)

	// Everything below requires a live session.
	auth := rg.Group("/")
	auth.Use(middleware.Protect(m.Repo, container.GetJWT(), container.GetLogger()))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/users/me", m.Users.GetMe)
		auth.PATCH("/users/update-me", m.Users.UpdateMe)
		auth.DELETE("/users/delete-me", m.Users.DeleteMe)
		auth.POST("/users/me/photo", m.Users.UploadPhoto)
		auth.PATCH("/users/update-my-password", m.Auth.UpdatePassword)
	}

	// Admin functions.
	admin := auth.Group("/")
	admin.Use(middleware.RequireRoles(entity.RoleAdmin, entity.RoleLeadGuide))
	{
		admin.GET("/users", m.Users.List)
		admin.GET("/users/:id", m.Users.Get)
		admin.PATCH("/users/:id", m.Users.Update)
		admin.DELETE("/users/:id", m.Users.Delete)
	}
}
