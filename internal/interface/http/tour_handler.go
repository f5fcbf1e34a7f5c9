package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wander-api/wander/internal/application"
	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/pkg/response"
	"github.com/wander-api/wander/pkg/validation"
)

type TourHandler struct {
	Svc    *application.TourService
	Logger *logrus.Logger
}

func NewTourHandler(svc *application.TourService, logger *logrus.Logger) *TourHandler {
	return &TourHandler{Svc: svc, Logger: logger}
}

type tourRequest struct {
	Name         string  `json:"name" binding:"required"`
	Duration     int     `json:"duration" binding:"required,gt=0"`
	MaxGroupSize int     `json:"max_group_size" binding:"required,gt=0"`
	Difficulty   string  `json:"difficulty" binding:"required,difficulty"`
	Price        float64 `json:"price" binding:"required,gte=0"`
	Summary      string  `json:"summary" binding:"required"`
	Description  string  `json:"description"`
	ImageCover   string  `json:"image_cover"`
}

func (r *tourRequest) apply(t *entity.Tour) {
	t.Name = r.Name
	t.Duration = r.Duration
	t.MaxGroupSize = r.MaxGroupSize
	t.Difficulty = r.Difficulty
	t.Price = r.Price
	t.Summary = r.Summary
	t.Description = r.Description
	t.ImageCover = r.ImageCover
}

// List GET /api/tours
func (h *TourHandler) List(c *gin.Context) {
	tours, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tours": tours}, "tours", gin.H{"results": len(tours)})
}

// Get GET /api/tours/:id
func (h *TourHandler) Get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tour": t}, "tour", nil)
}

// Search GET /api/tours/search?q=...&size=...
func (h *TourHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tours": hits}, "search results", gin.H{"results": len(hits)})
}

// Create POST /api/tours (admin, lead-guide)
func (h *TourHandler) Create(c *gin.Context) {
	var req tourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t := &entity.Tour{}
	req.apply(t)
	if err := h.Svc.Create(c.Request.Context(), t); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"tour": t}, "tour created", nil)
}

// Update PATCH /api/tours/:id (admin, lead-guide)
func (h *TourHandler) Update(c *gin.Context) {
	var req tourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	req.apply(t)
	if err := h.Svc.Update(c.Request.Context(), t); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tour": t}, "tour updated", nil)
}

// Delete DELETE /api/tours/:id (admin, lead-guide)
func (h *TourHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}
