package user

import (
	"fmt"
	"strings"
	"time"
)

// User is an account of the catalog. The password hash never leaves the API.
type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Admin    bool      `json:"admin"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

// NewUser creates a non-admin user with validation
func NewUser(username, email, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 256 {
		return nil, fmt.Errorf("username must be between 1 and 256 characters")
	}
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 256 {
		return nil, fmt.Errorf("email must be between 1 and 256 characters")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	return &User{Username: username, Email: email, Password: passwordHash}, nil
}

// Public is the user as exposed to other users and admins.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Password = ""
	return &cp
}
