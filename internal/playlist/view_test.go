package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivePlaylistID(t *testing.T) {
	playlists := []Playlist{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		name      string
		playlists []Playlist
		requested string
		want      string
	}{
		{"requested exists", playlists, "b", "b"},
		{"requested missing falls back to first", playlists, "zzz", "a"},
		{"no request picks first", playlists, "", "a"},
		{"empty list", nil, "b", ""},
		{"empty list no request", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActivePlaylistID(tt.playlists, tt.requested))
		})
	}
}

func TestFilterSortRatingStable(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "B", Rating: 3},
		{ID: "2", Title: "A", Rating: 3},
		{ID: "3", Title: "C", Rating: 5},
	}

	got := FilterSort(items, "", SortRating)
	assert.Equal(t, []string{"3", "1", "2"}, ids(got))

	// Equal ratings keep stored order: B before A.
	tied := FilterSort(items[:2], "", SortRating)
	assert.Equal(t, []string{"1", "2"}, ids(tied))
}

func TestFilterSortAlphabetical(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "banana"},
		{ID: "2", Title: "Apple"},
		{ID: "3", Title: "cherry"},
	}

	got := FilterSort(items, "", SortAlphabetical)
	assert.Equal(t, []string{"2", "1", "3"}, ids(got))
}

func TestFilterSortQuery(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "Daft Punk - One More Time"},
		{ID: "2", Title: "Around the World"},
		{ID: "3", Title: "daft punk live"},
	}

	got := FilterSort(items, "DAFT", SortRating)
	assert.Equal(t, []string{"1", "3"}, ids(got))

	got = FilterSort(items, "  world ", SortRating)
	assert.Equal(t, []string{"2"}, ids(got))

	got = FilterSort(items, "nothing here", SortRating)
	assert.Empty(t, got)
}

func TestFilterSortDoesNotMutateInput(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "B", Rating: 1},
		{ID: "2", Title: "A", Rating: 5},
	}

	_ = FilterSort(items, "", SortRating)
	assert.Equal(t, []string{"1", "2"}, ids(items))

	first := FilterSort(items, "", SortAlphabetical)
	second := FilterSort(items, "", SortAlphabetical)
	assert.Equal(t, first, second)
}

func TestFirstPlayable(t *testing.T) {
	t.Run("skips non-media", func(t *testing.T) {
		pl := Playlist{Items: []Item{
			{ID: "song.mp3", Kind: KindAudioFile, Title: "Upload"},
			{ID: "v1", Kind: KindMedia, Title: "Video", Embeddable: true},
		}}
		ref, ok := FirstPlayable(pl)
		assert.True(t, ok)
		assert.Equal(t, "v1", ref.ID)
		assert.False(t, ref.ExternalOnly)
	})

	t.Run("non-embeddable is returned flagged", func(t *testing.T) {
		pl := Playlist{Items: []Item{
			{ID: "v1", Kind: KindMedia, Title: "Locked", Embeddable: false},
			{ID: "v2", Kind: KindMedia, Title: "Open", Embeddable: true},
		}}
		ref, ok := FirstPlayable(pl)
		assert.True(t, ok)
		assert.Equal(t, "v1", ref.ID)
		assert.True(t, ref.ExternalOnly)
	})

	t.Run("no media items", func(t *testing.T) {
		pl := Playlist{Items: []Item{{ID: "song.mp3", Kind: KindAudioFile}}}
		_, ok := FirstPlayable(pl)
		assert.False(t, ok)
	})

	t.Run("empty playlist", func(t *testing.T) {
		_, ok := FirstPlayable(Playlist{})
		assert.False(t, ok)
	})
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
