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

// TourModule wires the catalog routes. Reads are public; mutations require
// the admin or lead-guide role.
type TourModule struct {
	Tours *handlers.TourHandler
	Repo  repository.UserRepository
}

func NewTourModule(tours *handlers.TourHandler, repo repository.UserRepository) *TourModule {
	return &TourModule{Tours: tours, Repo: repo}
}

func (m *TourModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/tours", readLimiter, m.Tours.List)
	rg.GET("/tours/search", readLimiter, m.Tours.Search)
	rg.GET("/tours/:id", readLimiter, m.Tours.Get)

	manage := rg.Group("/")
	manage.Use(middleware.Protect(m.Repo, container.GetJWT(), container.GetLogger()))
	manage.Use(middleware.RequireRoles(entity.RoleAdmin, entity.RoleLeadGuide))
	{
		manage.POST("/tours", m.Tours.Create)
		manage.PATCH("/tours/:id", m.Tours.Update)
		manage.DELETE("/tours/:id", m.Tours.Delete)
	}
}
