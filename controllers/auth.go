package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/YashRana03/natours/config"
	"github.com/YashRana03/natours/models"
	"github.com/YashRana03/natours/store"
	"github.com/YashRana03/natours/utils"
)

// UserStore is what the auth handlers need from the users repository.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	SetPasswordReset(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error
	ClearPasswordReset(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, u *models.User) error
}

// Mailer delivers out-of-band messages to users.
type Mailer interface {
	Send(to, subject, body string) error
}

// Auth bundles the signup, login and password-recovery handlers.
type Auth struct {
	users UserStore
	mail  Mailer
	cfg   config.Config
}

// NewAuth creates the auth handler set.
func NewAuth(users UserStore, mail Mailer, cfg config.Config) *Auth {
	return &Auth{users: users, mail: mail, cfg: cfg}
}

// SignupInput is the request body for registration. The role and the
// passwordChangedAt timestamp are deliberately not bindable; accepting them
// would let a caller forge privileges or the token-invalidation clock.
type SignupInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

// LoginInput is the request body for login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordInput carries the account email for password recovery.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput carries the replacement password; the reset token
// itself travels in the URL.
type ResetPasswordInput struct {
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

// Signup creates a credential record and logs the new user in.
func (a *Auth) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}

	user := &models.User{
		Name:            input.Name,
		Email:           input.Email,
		Role:            models.RoleUser,
		Password:        input.Password,
		PasswordConfirm: input.PasswordConfirm,
	}
	user.NormalizeEmail()

	if err := user.Validate(); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}
	if err := user.HashPassword(); err != nil {
		abortWith(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			abortWith(c, utils.NewAppError("This email is already in use", http.StatusBadRequest))
			return
		}
		abortWith(c, err)
		return
	}

	token, err := utils.SignToken(user.ID.Hex(), a.cfg.JWTSecret, a.cfg.JWTExpiry)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

// Login checks the credentials and issues a session token. A missing email
// or password is a 400; a wrong email and a wrong password both collapse
// into the same 401 so the response never says which one failed.
func (a *Auth) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWith(c, utils.NewAppError("Invalid request body", http.StatusBadRequest))
		return
	}

	if input.Email == "" || input.Password == "" {
		abortWith(c, utils.NewAppError("Please provide email and password", http.StatusBadRequest))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := a.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, store.ErrNotFound) {
		abortWith(c, utils.NewAppError("Incorrect email or password", http.StatusUnauthorized))
		return
	}
	if err != nil {
		abortWith(c, err)
		return
	}

	if !user.CorrectPassword(input.Password) {
		abortWith(c, utils.NewAppError("Incorrect email or password", http.StatusUnauthorized))
		return
	}

	token, err := utils.SignToken(user.ID.Hex(), a.cfg.JWTSecret, a.cfg.JWTExpiry)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
	})
}

// ForgotPassword stores a hashed one-time reset token on the record and
// mails the plaintext token to the user. If the mail cannot be sent the
// pending reset is rolled back so the record is not left in a stuck state.
func (a *Auth) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := a.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, store.ErrNotFound) {
		abortWith(c, utils.NewAppError("There is no user with that email address", http.StatusNotFound))
		return
	}
	if err != nil {
		abortWith(c, err)
		return
	}

	resetToken, err := user.CreatePasswordResetToken()
	if err != nil {
		abortWith(c, err)
		return
	}
	if err := a.users.SetPasswordReset(ctx, user.ID, user.PasswordResetToken, user.PasswordResetExpires); err != nil {
		abortWith(c, err)
		return
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/users/resetPassword/%s", scheme(c), c.Request.Host, resetToken)
	message := fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to %s.\nIf you didn't forget your password, please ignore this email",
		resetURL,
	)

	if err := a.mail.Send(user.Email, "Your password reset token (valid for 10 minutes)", message); err != nil {
		// A slow mail dispatch may have exhausted the request context, so
		// the rollback gets its own budget.
		clearCtx, cancelClear := context.WithTimeout(context.Background(), dbTimeout)
		defer cancelClear()
		if clearErr := a.users.ClearPasswordReset(clearCtx, user.ID); clearErr != nil {
			slog.Error("could not clear reset token after mail failure", "error", clearErr, "user", user.ID.Hex())
		}
		abortWith(c, utils.NewAppError("There was an error sending the email. Try again later", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Token sent to email",
	})
}

// ResetPassword exchanges an unexpired reset token for a new password and a
// fresh session token.
func (a *Auth) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tokenHash := models.HashResetToken(c.Param("token"))
	user, err := a.users.FindByResetToken(ctx, tokenHash, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		abortWith(c, utils.NewAppError("Token is invalid or has expired", http.StatusBadRequest))
		return
	}
	if err != nil {
		abortWith(c, err)
		return
	}

	user.Password = input.Password
	user.PasswordConfirm = input.PasswordConfirm
	if err := user.Validate(); err != nil {
		abortWith(c, utils.NewAppError(err.Error(), http.StatusBadRequest))
		return
	}
	if err := user.HashPassword(); err != nil {
		abortWith(c, err)
		return
	}

	// One second back so the token issued below is never older than the
	// change itself.
	user.PasswordChangedAt = time.Now().Add(-time.Second)
	user.PasswordResetToken = ""
	user.PasswordResetExpires = time.Time{}

	if err := a.users.UpdatePassword(ctx, user); err != nil {
		abortWith(c, err)
		return
	}

	token, err := utils.SignToken(user.ID.Hex(), a.cfg.JWTSecret, a.cfg.JWTExpiry)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
	})
}

func scheme(c *gin.Context) string {
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
