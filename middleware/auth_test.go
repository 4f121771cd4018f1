package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/YashRana03/natours/models"
	"github.com/YashRana03/natours/store"
	"github.com/YashRana03/natours/utils"
)

const testSecret = "test-secret"

type fakeFinder struct {
	users map[string]*models.User
}

func (f *fakeFinder) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func newTestUser(role string) *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test User",
		Email: "test@example.com",
		Role:  role,
	}
}

func protectedRouter(finder UserFinder, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())

	handlers := append([]gin.HandlerFunc{Protect(finder, testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"status": "success", "email": user.Email})
	})
	r.GET("/secure", handlers...)
	return r
}

func get(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectMissingHeader(t *testing.T) {
	r := protectedRouter(&fakeFinder{})

	w := get(r, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status":"fail","message":"You are not logged in. Please log in to get access"}`, w.Body.String())
}

func TestProtectMalformedHeader(t *testing.T) {
	r := protectedRouter(&fakeFinder{})

	w := get(r, "Token abc123")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectInvalidToken(t *testing.T) {
	r := protectedRouter(&fakeFinder{})

	w := get(r, "Bearer not.a.token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Invalid or expired token. Please log in again"}`, w.Body.String())
}

func TestProtectDeletedUser(t *testing.T) {
	u := newTestUser(models.RoleUser)
	tok, err := utils.SignToken(u.ID.Hex(), testSecret, time.Hour)
	require.NoError(t, err)

	// the finder has no record for the token's subject
	r := protectedRouter(&fakeFinder{users: map[string]*models.User{}})

	w := get(r, "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "does no longer exist")
}

func TestProtectPasswordChangedAfterIssue(t *testing.T) {
	u := newTestUser(models.RoleUser)
	tok, err := utils.SignToken(u.ID.Hex(), testSecret, time.Hour)
	require.NoError(t, err)

	u.PasswordChangedAt = time.Now().Add(time.Hour)
	r := protectedRouter(&fakeFinder{users: map[string]*models.User{u.ID.Hex(): u}})

	w := get(r, "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "changed recently")
}

func TestProtectSuccess(t *testing.T) {
	u := newTestUser(models.RoleUser)
	u.PasswordChangedAt = time.Now().Add(-time.Hour)
	tok, err := utils.SignToken(u.ID.Hex(), testSecret, time.Hour)
	require.NoError(t, err)

	r := protectedRouter(&fakeFinder{users: map[string]*models.User{u.ID.Hex(): u}})

	w := get(r, "Bearer "+tok)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), u.Email)
}

func TestRestrictToForbidden(t *testing.T) {
	u := newTestUser(models.RoleUser)
	tok, err := utils.SignToken(u.ID.Hex(), testSecret, time.Hour)
	require.NoError(t, err)

	r := protectedRouter(
		&fakeFinder{users: map[string]*models.User{u.ID.Hex(): u}},
		RestrictTo(models.RoleAdmin, models.RoleLeadGuide),
	)

	w := get(r, "Bearer "+tok)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status":"fail","message":"You do not have permission to perform this action"}`, w.Body.String())
}

func TestRestrictToAllowed(t *testing.T) {
	u := newTestUser(models.RoleLeadGuide)
	tok, err := utils.SignToken(u.ID.Hex(), testSecret, time.Hour)
	require.NoError(t, err)

	r := protectedRouter(
		&fakeFinder{users: map[string]*models.User{u.ID.Hex(): u}},
		RestrictTo(models.RoleAdmin, models.RoleLeadGuide),
	)

	w := get(r, "Bearer "+tok)

	assert.Equal(t, http.StatusOK, w.Code)
}
