package playlist

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrDuplicateItem    = errors.New("item already saved in a playlist")
	ErrBlankName        = errors.New("name required")
	ErrMissingIdentity  = errors.New("item must include id and type")
	ErrRatingOutOfRange = errors.New("rating must be between 0 and 5")
)

// Store is the persistence contract over the user -> playlist -> item tree.
// All operations are scoped by user id and atomic with respect to concurrent
// calls: in particular two simultaneous AddItem calls for the same (kind, id)
// under one user resolve to exactly one success and one ErrDuplicateItem.
type Store interface {
	CreateUser(ctx context.Context, nu NewUser) (User, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)

	ListPlaylists(ctx context.Context, userID string) ([]Playlist, error)
	CreatePlaylist(ctx context.Context, userID, name string) (Playlist, error)
	DeletePlaylist(ctx context.Context, userID, playlistID string) error

	// AddItem checks the (kind, id) pair against every playlist of the user,
	// not just the target, before inserting.
	AddItem(ctx context.Context, userID, playlistID string, item Item) (Item, error)
	// UpdateItemRating rejects ratings outside [0,5]; it never clamps.
	UpdateItemRating(ctx context.Context, userID, playlistID, itemID string, rating int) (Item, error)
	DeleteItem(ctx context.Context, userID, playlistID, itemID string) error
}
