package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wander-api/wander/internal/application"
	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/internal/interface/middleware"
	"github.com/wander-api/wander/pkg/response"
	"github.com/wander-api/wander/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateMeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	// Present only to produce a clear rejection; this route never touches
	// passwords.
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type adminUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Role  string `json:"role" binding:"omitempty,role"`
}

// GetMe GET /api/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(u)}, "profile", nil)
}

// UpdateMe PATCH /api/users/update-me (name/email only)
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		response.Error[any](c, http.StatusBadRequest,
			"this route is not for password updates, use /users/update-my-password", nil)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey),
		application.UpdateProfileInput{Name: req.Name, Email: req.Email})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(u)}, "profile updated", nil)
}

// DeleteMe DELETE /api/users/delete-me (soft delete)
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.Svc.Deactivate(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPhoto POST /api/users/me/photo (multipart)
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "photo file is required", nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "could not read photo", nil)
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadPhoto(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), f,
		file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(u)}, "photo updated", nil)
}

// List GET /api/users (admin, lead-guide)
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, userPayload(u))
	}
	response.Success(c, http.StatusOK, gin.H{"users": out}, "users", gin.H{"results": len(out)})
}

// Get GET /api/users/:id (admin, lead-guide)
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(u)}, "user", nil)
}

// Update PATCH /api/users/:id (admin, lead-guide; never passwords)
func (h *UserHandler) Update(c *gin.Context) {
	var req adminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.AdminUpdate(c.Request.Context(), c.Param("id"), application.AdminUpdateInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  entity.Role(req.Role),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userPayload(u)}, "user updated", nil)
}

// Delete DELETE /api/users/:id (admin, lead-guide; soft delete)
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}
