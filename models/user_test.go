package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUser() *User {
	return &User{
		Name:            "Test User",
		Email:           "test@example.com",
		Role:            RoleUser,
		Password:        "password123",
		PasswordConfirm: "password123",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*User)
		wantErr error
	}{
		{"valid", func(u *User) {}, nil},
		{"missing name", func(u *User) { u.Name = " " }, ErrNameRequired},
		{"bad email", func(u *User) { u.Email = "not-an-email" }, ErrEmailInvalid},
		{"short password", func(u *User) { u.Password, u.PasswordConfirm = "short", "short" }, ErrPasswordTooShort},
		{"mismatched confirm", func(u *User) { u.PasswordConfirm = "different123" }, ErrPasswordMismatch},
		{"bad role", func(u *User) { u.Role = "superadmin" }, ErrRoleInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)
			assert.ErrorIs(t, u.Validate(), tt.wantErr)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	u := &User{Email: "  Test@Example.COM "}
	u.NormalizeEmail()
	assert.Equal(t, "test@example.com", u.Email)
}

func TestHashPassword(t *testing.T) {
	u := validUser()
	require.NoError(t, u.HashPassword())

	assert.Empty(t, u.PasswordConfirm)
	assert.NotEqual(t, "password123", u.Password)
	assert.True(t, u.CorrectPassword("password123"))
	assert.False(t, u.CorrectPassword("wrong-password"))
}

func TestChangedPasswordAfter(t *testing.T) {
	issued := time.Now()

	u := validUser()
	assert.False(t, u.ChangedPasswordAfter(issued), "never changed")

	u.PasswordChangedAt = issued.Add(-time.Hour)
	assert.False(t, u.ChangedPasswordAfter(issued), "changed before issue")

	u.PasswordChangedAt = issued.Add(time.Hour)
	assert.True(t, u.ChangedPasswordAfter(issued), "changed after issue")

	u.PasswordChangedAt = issued
	assert.True(t, u.ChangedPasswordAfter(issued), "changed at issue time")
}

func TestCreatePasswordResetToken(t *testing.T) {
	u := validUser()

	plain, err := u.CreatePasswordResetToken()
	require.NoError(t, err)

	assert.Len(t, plain, 64, "32 random bytes hex encoded")
	assert.NotEqual(t, plain, u.PasswordResetToken, "only the hash is stored")
	assert.Equal(t, HashResetToken(plain), u.PasswordResetToken)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), u.PasswordResetExpires, time.Minute)
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin} {
		assert.True(t, ValidRole(role), role)
	}
	assert.False(t, ValidRole("owner"))
	assert.False(t, ValidRole(""))
}
