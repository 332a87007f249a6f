package playlist

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store uses; tests inject pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store over a relational schema. The
// (user_id, kind, media_id) unique index carries the global-per-user
// duplicate invariant; ON DELETE CASCADE carries the no-orphan-items one.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		`CREATE TABLE IF NOT EXISTS users(
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS playlists(
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			seq BIGSERIAL,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS items(
			seq BIGSERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			playlist_id UUID NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			media_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			thumbnail TEXT NOT NULL DEFAULT '',
			duration_sec INT NOT NULL DEFAULT 0,
			views BIGINT NOT NULL DEFAULT 0,
			embeddable BOOLEAN NOT NULL DEFAULT TRUE,
			rating INT NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 5),
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, kind, media_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) userExists(ctx context.Context, q DB, userID string) error {
	var exists bool
	if err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback(ctx)

	var u User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, display_name, avatar_url, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, display_name, avatar_url, password_hash
	`, nu.Username, nu.DisplayName, nu.AvatarURL, nu.PasswordHash).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}

	var fav Playlist
	err = tx.QueryRow(ctx, `
		INSERT INTO playlists (user_id, name)
		VALUES ($1, 'Favorites')
		RETURNING id, name, created_at
	`, u.ID).Scan(&fav.ID, &fav.Name, &fav.CreatedAt)
	if err != nil {
		return User{}, err
	}
	fav.Items = []Item{}
	u.Playlists = []Playlist{fav}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) FindUserByUsername(ctx context.Context, username string) (User, error) {
	return s.findUser(ctx, `
		SELECT id, username, display_name, avatar_url, password_hash
		FROM users WHERE username = $1
	`, username)
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (User, error) {
	return s.findUser(ctx, `
		SELECT id, username, display_name, avatar_url, password_hash
		FROM users WHERE id = $1
	`, id)
}

func (s *PostgresStore) findUser(ctx context.Context, sql, arg string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, sql, arg).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.PasswordHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	playlists, err := s.ListPlaylists(ctx, u.ID)
	if err != nil {
		return User{}, err
	}
	u.Playlists = playlists
	return u, nil
}

func (s *PostgresStore) ListPlaylists(ctx context.Context, userID string) ([]Playlist, error) {
	if err := s.userExists(ctx, s.db, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, created_at
		FROM playlists
		WHERE user_id = $1
		ORDER BY seq ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := []Playlist{}
	index := map[string]int{}
	for rows.Next() {
		var pl Playlist
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.CreatedAt); err != nil {
			return nil, err
		}
		pl.Items = []Item{}
		index[pl.ID] = len(playlists)
		playlists = append(playlists, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.Query(ctx, `
		SELECT playlist_id, media_id, kind, title, thumbnail,
		       duration_sec, views, embeddable, rating, added_at
		FROM items
		WHERE user_id = $1
		ORDER BY seq ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var plID, kind string
		var it Item
		if err := itemRows.Scan(
			&plID, &it.ID, &kind, &it.Title, &it.Thumbnail,
			&it.DurationSec, &it.Views, &it.Embeddable, &it.Rating, &it.AddedAt,
		); err != nil {
			return nil, err
		}
		it.Kind = MediaKind(kind)
		if i, ok := index[plID]; ok {
			playlists[i].Items = append(playlists[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	return playlists, nil
}

func (s *PostgresStore) CreatePlaylist(ctx context.Context, userID, name string) (Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Playlist{}, ErrBlankName
	}
	if err := s.userExists(ctx, s.db, userID); err != nil {
		return Playlist{}, err
	}

	var pl Playlist
	err := s.db.QueryRow(ctx, `
		INSERT INTO playlists (user_id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at
	`, userID, name).Scan(&pl.ID, &pl.Name, &pl.CreatedAt)
	if err != nil {
		return Playlist{}, err
	}
	pl.Items = []Item{}
	return pl, nil
}

func (s *PostgresStore) DeletePlaylist(ctx context.Context, userID, playlistID string) error {
	if err := s.userExists(ctx, s.db, userID); err != nil {
		return err
	}

	// Items cascade with the playlist row.
	tag, err := s.db.Exec(ctx, `
		DELETE FROM playlists WHERE id = $1 AND user_id = $2
	`, playlistID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

func (s *PostgresStore) AddItem(ctx context.Context, userID, playlistID string, item Item) (Item, error) {
	if item.ID == "" || item.Kind == "" {
		return Item{}, ErrMissingIdentity
	}
	if item.Rating < 0 || item.Rating > 5 {
		return Item{}, ErrRatingOutOfRange
	}

	if err := s.userExists(ctx, s.db, userID); err != nil {
		return Item{}, err
	}

	var owner string
	err := s.db.QueryRow(ctx, `
		SELECT user_id FROM playlists WHERE id = $1 AND user_id = $2
	`, playlistID, userID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrPlaylistNotFound
	}
	if err != nil {
		return Item{}, err
	}

	added := item
	err = s.db.QueryRow(ctx, `
		INSERT INTO items (user_id, playlist_id, media_id, kind, title,
		                   thumbnail, duration_sec, views, embeddable, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING added_at
	`, userID, playlistID, item.ID, string(item.Kind), item.Title,
		item.Thumbnail, item.DurationSec, item.Views, item.Embeddable, item.Rating,
	).Scan(&added.AddedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Item{}, ErrDuplicateItem
		}
		return Item{}, err
	}
	return added, nil
}

func (s *PostgresStore) UpdateItemRating(ctx context.Context, userID, playlistID, itemID string, rating int) (Item, error) {
	if rating < 0 || rating > 5 {
		return Item{}, ErrRatingOutOfRange
	}
	if err := s.playlistExists(ctx, userID, playlistID); err != nil {
		return Item{}, err
	}

	var it Item
	var kind string
	err := s.db.QueryRow(ctx, `
		UPDATE items SET rating = $4
		WHERE user_id = $1 AND playlist_id = $2 AND media_id = $3
		RETURNING media_id, kind, title, thumbnail, duration_sec,
		          views, embeddable, rating, added_at
	`, userID, playlistID, itemID, rating).Scan(
		&it.ID, &kind, &it.Title, &it.Thumbnail, &it.DurationSec,
		&it.Views, &it.Embeddable, &it.Rating, &it.AddedAt,
	)
	it.Kind = MediaKind(kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *PostgresStore) DeleteItem(ctx context.Context, userID, playlistID, itemID string) error {
	if err := s.playlistExists(ctx, userID, playlistID); err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM items
		WHERE user_id = $1 AND playlist_id = $2 AND media_id = $3
	`, userID, playlistID, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *PostgresStore) playlistExists(ctx context.Context, userID, playlistID string) error {
	if err := s.userExists(ctx, s.db, userID); err != nil {
		return err
	}
	var owner string
	err := s.db.QueryRow(ctx, `
		SELECT user_id FROM playlists WHERE id = $1 AND user_id = $2
	`, playlistID, userID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPlaylistNotFound
	}
	return err
}
