package playlist

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// document is the persisted shape: one JSON file holding every user with
// playlists and items embedded inline.
type document struct {
	Users []docUser `json:"users"`
}

type docUser struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"displayName"`
	AvatarURL    string     `json:"avatarUrl"`
	PasswordHash string     `json:"passwordHash"`
	Playlists    []Playlist `json:"playlists"`
}

// DocumentStore keeps the whole tree in one JSON document on disk. Mutations
// take the write lock, apply against a copy and swap it in only after the
// file write succeeded, so a failed write never leaves a half-applied change
// visible. Reads take the read lock and return deep copies.
type DocumentStore struct {
	path string

	mu  sync.RWMutex
	doc document
}

func OpenDocumentStore(path string) (*DocumentStore, error) {
	s := &DocumentStore{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.doc); err != nil {
		return nil, err
	}
	return s, nil
}

// persist writes the document to a temp file and renames it over the store
// path, so readers of the file itself never observe a partial write.
func (s *DocumentStore) persist(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".db-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// mutate runs fn against a deep copy of the document under the write lock.
// The copy becomes current only after it has been persisted.
func (s *DocumentStore) mutate(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := cloneDocument(s.doc)
	if err := fn(&work); err != nil {
		return err
	}
	if err := s.persist(work); err != nil {
		return err
	}
	s.doc = work
	return nil
}

func cloneDocument(doc document) document {
	out := document{Users: make([]docUser, len(doc.Users))}
	for i, u := range doc.Users {
		cu := u
		cu.Playlists = clonePlaylists(u.Playlists)
		out.Users[i] = cu
	}
	return out
}

func clonePlaylists(pls []Playlist) []Playlist {
	out := make([]Playlist, len(pls))
	for i, pl := range pls {
		cp := pl
		cp.Items = append([]Item(nil), pl.Items...)
		out[i] = cp
	}
	return out
}

func findDocUser(doc *document, userID string) *docUser {
	for i := range doc.Users {
		if doc.Users[i].ID == userID {
			return &doc.Users[i]
		}
	}
	return nil
}

func findDocPlaylist(u *docUser, playlistID string) *Playlist {
	for i := range u.Playlists {
		if u.Playlists[i].ID == playlistID {
			return &u.Playlists[i]
		}
	}
	return nil
}

func toUser(u docUser) User {
	return User{
		ID:           u.ID,
		Username:     u.Username,
		DisplayName:  u.DisplayName,
		AvatarURL:    u.AvatarURL,
		PasswordHash: u.PasswordHash,
		Playlists:    clonePlaylists(u.Playlists),
	}
}

func (s *DocumentStore) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	var created docUser
	err := s.mutate(func(doc *document) error {
		for _, u := range doc.Users {
			if u.Username == nu.Username {
				return ErrUsernameTaken
			}
		}
		created = docUser{
			ID:           uuid.NewString(),
			Username:     nu.Username,
			DisplayName:  nu.DisplayName,
			AvatarURL:    nu.AvatarURL,
			PasswordHash: nu.PasswordHash,
			Playlists: []Playlist{
				{
					ID:        uuid.NewString(),
					Name:      "Favorites",
					CreatedAt: time.Now().UTC(),
					Items:     []Item{},
				},
			},
		}
		doc.Users = append(doc.Users, created)
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return toUser(created), nil
}

func (s *DocumentStore) FindUserByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.doc.Users {
		if u.Username == username {
			return toUser(u), nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *DocumentStore) GetUser(ctx context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.doc.Users {
		if u.ID == id {
			return toUser(u), nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *DocumentStore) ListPlaylists(ctx context.Context, userID string) ([]Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.doc.Users {
		if u.ID == userID {
			return clonePlaylists(u.Playlists), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *DocumentStore) CreatePlaylist(ctx context.Context, userID, name string) (Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Playlist{}, ErrBlankName
	}

	var created Playlist
	err := s.mutate(func(doc *document) error {
		u := findDocUser(doc, userID)
		if u == nil {
			return ErrUserNotFound
		}
		created = Playlist{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: time.Now().UTC(),
			Items:     []Item{},
		}
		u.Playlists = append(u.Playlists, created)
		return nil
	})
	if err != nil {
		return Playlist{}, err
	}
	return created, nil
}

func (s *DocumentStore) DeletePlaylist(ctx context.Context, userID, playlistID string) error {
	return s.mutate(func(doc *document) error {
		u := findDocUser(doc, userID)
		if u == nil {
			return ErrUserNotFound
		}
		for i := range u.Playlists {
			if u.Playlists[i].ID == playlistID {
				// Items go with the playlist; nothing else references them.
				u.Playlists = append(u.Playlists[:i], u.Playlists[i+1:]...)
				return nil
			}
		}
		return ErrPlaylistNotFound
	})
}

func (s *DocumentStore) AddItem(ctx context.Context, userID, playlistID string, item Item) (Item, error) {
	if item.ID == "" || item.Kind == "" {
		return Item{}, ErrMissingIdentity
	}
	if item.Rating < 0 || item.Rating > 5 {
		return Item{}, ErrRatingOutOfRange
	}

	var added Item
	err := s.mutate(func(doc *document) error {
		u := findDocUser(doc, userID)
		if u == nil {
			return ErrUserNotFound
		}
		pl := findDocPlaylist(u, playlistID)
		if pl == nil {
			return ErrPlaylistNotFound
		}
		// Uniqueness is per user, not per playlist.
		for _, other := range u.Playlists {
			for _, it := range other.Items {
				if it.Kind == item.Kind && it.ID == item.ID {
					return ErrDuplicateItem
				}
			}
		}
		added = item
		added.AddedAt = time.Now().UTC()
		pl.Items = append(pl.Items, added)
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	return added, nil
}

func (s *DocumentStore) UpdateItemRating(ctx context.Context, userID, playlistID, itemID string, rating int) (Item, error) {
	if rating < 0 || rating > 5 {
		return Item{}, ErrRatingOutOfRange
	}

	var updated Item
	err := s.mutate(func(doc *document) error {
		u := findDocUser(doc, userID)
		if u == nil {
			return ErrUserNotFound
		}
		pl := findDocPlaylist(u, playlistID)
		if pl == nil {
			return ErrPlaylistNotFound
		}
		for i := range pl.Items {
			if pl.Items[i].ID == itemID {
				pl.Items[i].Rating = rating
				updated = pl.Items[i]
				return nil
			}
		}
		return ErrItemNotFound
	})
	if err != nil {
		return Item{}, err
	}
	return updated, nil
}

func (s *DocumentStore) DeleteItem(ctx context.Context, userID, playlistID, itemID string) error {
	return s.mutate(func(doc *document) error {
		u := findDocUser(doc, userID)
		if u == nil {
			return ErrUserNotFound
		}
		pl := findDocPlaylist(u, playlistID)
		if pl == nil {
			return ErrPlaylistNotFound
		}
		for i := range pl.Items {
			if pl.Items[i].ID == itemID {
				pl.Items = append(pl.Items[:i], pl.Items[i+1:]...)
				return nil
			}
		}
		return ErrItemNotFound
	})
}
