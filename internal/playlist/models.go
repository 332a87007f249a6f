package playlist

import (
	"time"
)

// MediaKind is the wire value stored with every item. "youtube" entries come
// from the search provider, "mp3" entries from the upload endpoint.
type MediaKind string

const (
	KindMedia     MediaKind = "youtube"
	KindAudioFile MediaKind = "mp3"
)

// Item is one saved entry inside a playlist. Its identity for duplicate
// detection is (Kind, ID): the same video or file may live in at most one
// playlist per user, across all of that user's playlists.
type Item struct {
	ID          string    `json:"id"`
	Kind        MediaKind `json:"type"`
	Title       string    `json:"title"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	DurationSec int       `json:"durationSec,omitempty"`
	Views       int64     `json:"views,omitempty"`
	Embeddable  bool      `json:"embeddable"`
	Rating      int       `json:"rating"`
	AddedAt     time.Time `json:"addedAt"`
}

// Playlist holds items in insertion order.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Items     []Item    `json:"items"`
}

// User owns an ordered sequence of playlists. The password hash never leaves
// the store layer; API responses use auth.SafeUser instead.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"displayName"`
	AvatarURL    string     `json:"avatarUrl"`
	PasswordHash string     `json:"-"`
	Playlists    []Playlist `json:"playlists"`
}

// NewUser carries the fields needed to register a user.
type NewUser struct {
	Username     string
	DisplayName  string
	AvatarURL    string
	PasswordHash string
}

// PlayableRef points the client at the first playable entry of a playlist.
// ExternalOnly is set when the source platform forbids inline embedding and
// the client must fall back to an external link.
type PlayableRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ExternalOnly bool   `json:"externalOnly"`
}

// SortMode selects the item-view ordering.
type SortMode string

const (
	SortAlphabetical SortMode = "az"
	SortRating       SortMode = "rating"
)
