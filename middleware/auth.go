package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/YashRana03/natours/models"
	"github.com/YashRana03/natours/store"
	"github.com/YashRana03/natours/utils"
)

const userContextKey = "currentUser"

// UserFinder resolves a token subject to a live credential record.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Protect verifies the Authorization: Bearer <token> header, checks that the
// bound user still exists and has not changed their password since the token
// was issued, and stores the record on the context for downstream handlers.
func Protect(users UserFinder, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			abortWith(c, utils.NewAppError("You are not logged in. Please log in to get access", http.StatusUnauthorized))
			return
		}

		userID, issuedAt, err := utils.VerifyToken(token, secret)
		if err != nil {
			abortWith(c, utils.NewAppError("Invalid or expired token. Please log in again", http.StatusUnauthorized))
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			abortWith(c, utils.NewAppError("The user belonging to this token does no longer exist", http.StatusUnauthorized))
			return
		}
		if err != nil {
			abortWith(c, err)
			return
		}

		if user.ChangedPasswordAfter(issuedAt) {
			abortWith(c, utils.NewAppError("The password was changed recently. Please log in again", http.StatusUnauthorized))
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RestrictTo allows only the given roles through. It must run after Protect.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortWith(c, utils.NewAppError("You are not logged in. Please log in to get access", http.StatusUnauthorized))
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		abortWith(c, utils.NewAppError("You do not have permission to perform this action", http.StatusForbidden))
	}
}

// CurrentUser returns the record Protect attached to the request.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
