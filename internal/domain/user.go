package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

const MinUsernameLen = 3

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// CanRegisterHotels reports whether the role may create listings.
func (r Role) CanRegisterHotels() bool {
	return r == RoleOwner || r == RoleAdmin
}

// UsernameFromEmail is the default display name for a new user: the local part of the address.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func ValidateUsername(username string) error {
	if len([]rune(strings.TrimSpace(username))) < MinUsernameLen {
		return Invalid("username must be at least %d characters long", MinUsernameLen)
	}
	return nil
}

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleOwner, RoleAdmin:
		return r, nil
	}
	return "", Invalid("unknown role %q", s)
}
