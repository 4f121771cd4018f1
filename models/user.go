package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Roles a user can hold. New accounts always start out as RoleUser.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

const (
	bcryptCost         = 12
	minPasswordLen     = 8
	resetTokenBytes    = 32
	resetTokenLifetime = 10 * time.Minute
)

var (
	ErrNameRequired     = errors.New("please provide a name")
	ErrEmailInvalid     = errors.New("please provide a valid email address")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("the passwords should match")
	ErrRoleInvalid      = errors.New("invalid user role")
)

// User is a credential record. The password hash and reset-token fields are
// kept out of every JSON response.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Role     string             `bson:"role" json:"role"`
	Password string             `bson:"password" json:"-"` // bcrypt hash

	// PasswordConfirm only lives between input binding and hashing; it is
	// never written to the database.
	PasswordConfirm string `bson:"-" json:"-"`

	PasswordChangedAt    time.Time `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string    `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires time.Time `bson:"passwordResetExpires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}

// NormalizeEmail lowercases and trims the email before it is validated or
// looked up, so the unique index never sees two spellings of one address.
func (u *User) NormalizeEmail() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// Validate checks the record before a password-setting write. It expects the
// plaintext password still in place, so it must run before HashPassword.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrNameRequired
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrEmailInvalid
	}
	if len(u.Password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if u.Password != u.PasswordConfirm {
		return ErrPasswordMismatch
	}
	if !ValidRole(u.Role) {
		return ErrRoleInvalid
	}
	return nil
}

// HashPassword replaces the plaintext password with its bcrypt hash and
// discards the confirmation field.
func (u *User) HashPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	u.PasswordConfirm = ""
	return nil
}

// CorrectPassword compares a candidate password against the stored hash.
func (u *User) CorrectPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// ChangedPasswordAfter reports whether the password changed at or after the
// given token-issue time, which invalidates any token issued before the
// change.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return !u.PasswordChangedAt.Truncate(time.Second).Before(issuedAt.Truncate(time.Second))
}

// CreatePasswordResetToken generates a random reset token, stores only its
// sha256 hash on the record together with a 10 minute expiry, and returns
// the plaintext token for out-of-band delivery.
func (u *User) CreatePasswordResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	u.PasswordResetToken = HashResetToken(token)
	u.PasswordResetExpires = time.Now().Add(resetTokenLifetime)
	return token, nil
}

// HashResetToken is the one-way transform applied to reset tokens at rest.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}
