package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/internal/domain/repository"
	"github.com/wander-api/wander/pkg/helpers"
)

// stubUserRepo serves a single user by ID; everything else is not found.
type stubUserRepo struct {
	user *entity.User
}

func (r *stubUserRepo) Create(context.Context, *entity.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if r.user != nil && r.user.ID == id && r.user.Active {
		cp := *r.user
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByResetTokenHash(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) Update(context.Context, *entity.User) error { return nil }

func (r *stubUserRepo) UpdatePassword(context.Context, string, string, time.Time) error {
	return nil
}

func (r *stubUserRepo) SetResetToken(context.Context, string, string, time.Time) error {
	return nil
}

func (r *stubUserRepo) ClearResetToken(context.Context, string) error { return nil }
func (r *stubUserRepo) Deactivate(context.Context, string) error      { return nil }
func (r *stubUserRepo) List(context.Context) ([]*entity.User, error)  { return nil, nil }

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func protectedEngine(repo repository.UserRepository, jwt *helpers.JWTManager, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	hs := append([]gin.HandlerFunc{Protect(repo, jwt, testLogger())}, extra...)
	hs = append(hs, func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	r.GET("/secure", hs...)
	return r
}

func activeUser(id string, role entity.Role) *entity.User {
	return &entity.User{ID: id, Name: "Test", Email: "t@example.com", Role: role, Active: true}
}

func TestProtect_BearerHeader(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	repo := &stubUserRepo{user: activeUser("u1", entity.RoleUser)}
	r := protectedEngine(repo, jwt)

	token, _, err := jwt.Generate("u1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestProtect_CookieFallback(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	repo := &stubUserRepo{user: activeUser("u1", entity.RoleUser)}
	r := protectedEngine(repo, jwt)

	token, _, err := jwt.Generate("u1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtect_MissingToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := protectedEngine(&stubUserRepo{}, jwt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtect_BadToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := protectedEngine(&stubUserRepo{user: activeUser("u1", entity.RoleUser)}, jwt)

	other := helpers.NewJWTManager("other-secret", time.Hour)
	forged, _, err := other.Generate("u1")
	require.NoError(t, err)

	for _, tok := range []string{"garbage", forged} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "token %q", tok)
	}
}

func TestProtect_UserGone(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := protectedEngine(&stubUserRepo{}, jwt)

	token, _, err := jwt.Generate("deleted-user")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// brokenUserRepo simulates a store outage on every lookup.
type brokenUserRepo struct {
	stubUserRepo
}

func (r *brokenUserRepo) GetByID(context.Context, string) (*entity.User, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestProtect_StoreFailureIsNotUnauthorized(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := protectedEngine(&brokenUserRepo{}, jwt)

	token, _, err := jwt.Generate("u1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "no longer exists")
}

func TestProtect_DeactivatedUser(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	u := activeUser("u1", entity.RoleUser)
	repo := &stubUserRepo{user: u}
	r := protectedEngine(repo, jwt)

	token, _, err := jwt.Generate("u1")
	require.NoError(t, err)
	u.Active = false

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtect_TokenIssuedBeforePasswordChange(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	u := activeUser("u1", entity.RoleUser)
	repo := &stubUserRepo{user: u}
	r := protectedEngine(repo, jwt)

	token, _, err := jwt.Generate("u1")
	require.NoError(t, err)

	changed := time.Now().Add(time.Minute)
	u.PasswordChangedAt = &changed

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)

	cases := []struct {
		role entity.Role
		want int
	}{
		{entity.RoleAdmin, http.StatusOK},
		{entity.RoleLeadGuide, http.StatusOK},
		{entity.RoleGuide, http.StatusForbidden},
		{entity.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		repo := &stubUserRepo{user: activeUser("u1", tc.role)}
		r := protectedEngine(repo, jwt, RequireRoles(entity.RoleAdmin, entity.RoleLeadGuide))

		token, _, err := jwt.Generate("u1")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, tc.want, w.Code, "role %s", tc.role)
	}
}

func TestRequireRoles_NoSessionGate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRoles(entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	// A role check without a preceding session gate is a wiring defect.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
