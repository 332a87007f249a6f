// Package auth covers account registration, password login, and the bearer
// token middleware that scopes every /users/{userId} route to its owner.
package auth

import (
	"context"
	"time"

	"github.com/lilights/tunedeck/internal/playlist"
)

// UserStore is the slice of the playlist store auth needs.
type UserStore interface {
	CreateUser(ctx context.Context, nu playlist.NewUser) (playlist.User, error)
	FindUserByUsername(ctx context.Context, username string) (playlist.User, error)
}

type Server struct {
	store     UserStore
	jwtSecret []byte
	accessTTL time.Duration
}

func NewServer(store UserStore, jwtSecret []byte, accessTTL time.Duration) *Server {
	return &Server{
		store:     store,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
	}
}

// SafeUser is the account shape returned to clients; it never carries the
// password hash.
type SafeUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

func toSafeUser(u playlist.User) SafeUser {
	return SafeUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
