package models

import (
	"context"

	"github.com/roach88/sweatz/internal/document"
)

// NewUser is the input to CreateUser. PasswordHash is stored as given.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Superuser    bool
	Role         string // defaults to "user"
}

// CreateUser registers an active user on the free tier, or the admin tier
// for superusers.
func (m *Models) CreateUser(ctx context.Context, u NewUser) (string, error) {
	role, tier := u.Role, "free"
	if role == "" {
		role = "user"
	}
	if u.Superuser {
		tier = "admin"
	}
	return m.insert(ctx, Users, document.Object{
		"username":          document.String(u.Username),
		"email":             document.String(u.Email),
		"password_hash":     document.String(u.PasswordHash),
		"first_name":        document.String(u.FirstName),
		"last_name":         document.String(u.LastName),
		"created_at":        m.now(),
		"last_login":        document.Null{},
		"is_active":         document.Bool(true),
		"is_superuser":      document.Bool(u.Superuser),
		"role":              document.String(role),
		"subscription_tier": document.String(tier),
	})
}

// UserByID returns a user.
func (m *Models) UserByID(ctx context.Context, userID string) (document.Object, error) {
	return m.get(ctx, Users, userID)
}

// UserByEmail returns the user with the given email.
func (m *Models) UserByEmail(ctx context.Context, email string) (document.Object, error) {
	return m.db.Collection(Users).FindOne(ctx, document.Object{"email": document.String(email)})
}

// UserByUsername returns the user with the given username.
func (m *Models) UserByUsername(ctx context.Context, username string) (document.Object, error) {
	return m.db.Collection(Users).FindOne(ctx, document.Object{"username": document.String(username)})
}

// RecordLogin stamps the user's last_login with the current time.
func (m *Models) RecordLogin(ctx context.Context, userID string) (bool, error) {
	return m.set(ctx, Users, userID, document.Object{"last_login": m.now()})
}
