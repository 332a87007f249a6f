package playlist

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	s, err := OpenDocumentStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return s
}

func mustCreateUser(t *testing.T, s Store, username string) User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{Username: username, PasswordHash: "x"})
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, NewUser{Username: "ada", DisplayName: "Ada", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	require.Len(t, u.Playlists, 1)
	assert.Equal(t, "Favorites", u.Playlists[0].Name)
	assert.Empty(t, u.Playlists[0].Items)

	_, err = s.CreateUser(ctx, NewUser{Username: "ada", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	found, err := s.FindUserByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = s.FindUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddItemDuplicateAcrossPlaylists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "ada")
	fav := u.Playlists[0]

	other, err := s.CreatePlaylist(ctx, u.ID, "Road Trip")
	require.NoError(t, err)

	item := Item{ID: "v1", Kind: KindMedia, Title: "Track", Embeddable: true}
	added, err := s.AddItem(ctx, u.ID, fav.ID, item)
	require.NoError(t, err)
	assert.False(t, added.AddedAt.IsZero())

	// Same identity into a different playlist of the same user still conflicts.
	_, err = s.AddItem(ctx, u.ID, other.ID, item)
	assert.ErrorIs(t, err, ErrDuplicateItem)

	// A different kind with the same id is a different identity.
	_, err = s.AddItem(ctx, u.ID, other.ID, Item{ID: "v1", Kind: KindAudioFile})
	assert.NoError(t, err)

	// Another user is free to save the same video.
	u2 := mustCreateUser(t, s, "grace")
	_, err = s.AddItem(ctx, u2.ID, u2.Playlists[0].ID, item)
	assert.NoError(t, err)
}

func TestAddItemValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "ada")
	fav := u.Playlists[0]

	_, err := s.AddItem(ctx, u.ID, fav.ID, Item{Kind: KindMedia})
	assert.ErrorIs(t, err, ErrMissingIdentity)

	_, err = s.AddItem(ctx, u.ID, fav.ID, Item{ID: "v1"})
	assert.ErrorIs(t, err, ErrMissingIdentity)

	_, err = s.AddItem(ctx, u.ID, fav.ID, Item{ID: "v1", Kind: KindMedia, Rating: 6})
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	_, err = s.AddItem(ctx, u.ID, fav.ID, Item{ID: "v1", Kind: KindMedia, Rating: -1})
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	_, err = s.AddItem(ctx, u.ID, "missing", Item{ID: "v1", Kind: KindMedia})
	assert.ErrorIs(t, err, ErrPlaylistNotFound)

	_, err = s.AddItem(ctx, "missing", fav.ID, Item{ID: "v1", Kind: KindMedia})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeletePlaylistFreesItemIdentities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "ada")

	pl, err := s.CreatePlaylist(ctx, u.ID, "Mix")
	require.NoError(t, err)

	item := Item{ID: "v1", Kind: KindMedia}
	_, err = s.AddItem(ctx, u.ID, pl.ID, item)
	require.NoError(t, err)

	require.NoError(t, s.DeletePlaylist(ctx, u.ID, pl.ID))

	playlists, err := s.ListPlaylists(ctx, u.ID)
	require.NoError(t, err)
	for _, p := range playlists {
		assert.NotEqual(t, pl.ID, p.ID)
	}

	// The cascade released the identity; re-adding elsewhere now succeeds.
	_, err = s.AddItem(ctx, u.ID, u.Playlists[0].ID, item)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.DeletePlaylist(ctx, u.ID, pl.ID), ErrPlaylistNotFound)
}

func TestDeleteItemFreesIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "ada")
	fav := u.Playlists[0]

	item := Item{ID: "v1", Kind: KindMedia}
	_, err := s.AddItem(ctx, u.ID, fav.ID, item)
	require.NoError(t, err)

	require.NoError(t, s.DeleteItem(ctx, u.ID, fav.ID, "v1"))
	assert.ErrorIs(t, s.DeleteItem(ctx, u.ID, fav.ID, "v1"), ErrItemNotFound)

	_, err = s.AddItem(ctx, u.ID, fav.ID, item)
	assert.NoError(t, err)
}

func TestUpdateItemRating(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "ada")
	fav := u.Playlists[0]

	_, err := s.AddItem(ctx, u.ID, fav.ID, Item{ID: "v1", Kind: KindMedia})
	require.NoError(t, err)

	for rating := 0; rating <= 5; rating++ {
		it, err := s.UpdateItemRating(ctx, u.ID, fav.ID, "v1", rating)
		require.NoError(t, err)
		assert.Equal(t, rating, it.Rating)
	}

	_, err = s.UpdateItemRating(ctx, u.ID, fav.ID, "v1", 6)
	assert.ErrorIs(t, err, ErrRatingOutOfRange)
	_, err = s.UpdateItemRating(ctx, u.ID, fav.ID, "v1", -1)
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	// Rejection left the stored value untouched.
	playlists, err := s.ListPlaylists(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, playlists[0].Items[0].Rating)

	_, err = s.UpdateItemRating(ctx, u.ID, fav.ID, "missing", 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestPersistReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	ctx := context.Background()

	s, err := OpenDocumentStore(path)
	require.NoError(t, err)

	u := mustCreateUser(t, s, "ada")
	_, err = s.AddItem(ctx, u.ID, u.Playlists[0].ID, Item{ID: "v1", Kind: KindMedia, Title: "Track", Rating: 4})
	require.NoError(t, err)

	reopened, err := OpenDocumentStore(path)
	require.NoError(t, err)

	got, err := reopened.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Playlists, 1)
	require.Len(t, got.Playlists[0].Items, 1)
	assert.Equal(t, "Track", got.Playlists[0].Items[0].Title)
	assert.Equal(t, 4, got.Playlists[0].Items[0].Rating)
	assert.Equal(t, "x", got.PasswordHash)
}

func TestConcurrentAddItemOneWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "ada")

	other, err := s.CreatePlaylist(ctx, u.ID, "Second")
	require.NoError(t, err)

	targets := []string{u.Playlists[0].ID, other.ID}
	item := Item{ID: "v1", Kind: KindMedia}

	var wg sync.WaitGroup
	errs := make([]error, len(targets))
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			_, errs[i] = s.AddItem(ctx, u.ID, target, item)
		}(i, target)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateItem):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestCreatePlaylistBlankName(t *testing.T) {
	s := newTestStore(t)
	u := mustCreateUser(t, s, "ada")

	_, err := s.CreatePlaylist(context.Background(), u.ID, "   ")
	assert.ErrorIs(t, err, ErrBlankName)
}
