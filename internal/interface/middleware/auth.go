package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/internal/domain/repository"
	"github.com/wander-api/wander/pkg/helpers"
	"github.com/wander-api/wander/pkg/response"
)

// Context keys set by Protect.
const (
	CtxUserKey   = "currentUser"
	CtxUserIDKey = "userID"
)

// Protect is the session gate. Per request it extracts a bearer token from
// the Authorization header (falling back to the access_token cookie),
// verifies signature and expiry, resolves the user (active records only),
// and rejects tokens issued before the user's last password change. On
// success the resolved user is attached to the context.
func Protect(users repository.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c, "you are not logged in")
			return
		}

		claims, err := jwt.Parse(token)
		if err != nil {
			if errors.Is(err, helpers.ErrTokenExpired) {
				logger.WithField("request_id", c.GetString("request_id")).Debug("expired session token")
			} else {
				logger.WithField("request_id", c.GetString("request_id")).Debug("invalid session token")
			}
			abortUnauthorized(c, "invalid or expired session, please log in again")
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// Covers both deleted and deactivated accounts.
			if errors.Is(err, repository.ErrNotFound) {
				abortUnauthorized(c, "the account belonging to this session no longer exists")
				return
			}
			// A store failure is not an authentication verdict.
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("session user lookup failed")
			response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
			c.Abort()
			return
		}

		var issuedAt time.Time
		if claims.IssuedAt != nil {
			issuedAt = claims.IssuedAt.Time
		}
		if u.PasswordChangedAfter(issuedAt) {
			abortUnauthorized(c, "password was changed recently, please log in again")
			return
		}

		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUser returns the identity attached by Protect, if any.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}

func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if tok, err := c.Cookie("access_token"); err == nil {
		return tok
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Error[any](c, http.StatusUnauthorized, msg, nil)
	c.Abort()
}
