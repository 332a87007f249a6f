package playlist

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ActivePlaylistID resolves which playlist the item view shows. A requested id
// wins when it exists; otherwise the first playlist in stored order is active;
// with no playlists nothing is active. The result depends only on the inputs,
// so deep links can re-derive the selection on every request.
func ActivePlaylistID(playlists []Playlist, requestedID string) string {
	if requestedID != "" {
		for _, pl := range playlists {
			if pl.ID == requestedID {
				return requestedID
			}
		}
	}
	if len(playlists) == 0 {
		return ""
	}
	return playlists[0].ID
}

// FilterSort returns the items whose title contains query (case-insensitive;
// blank query passes everything), ordered by the given mode. Alphabetical
// ordering uses English collation; every other mode sorts by rating
// descending. Both sorts are stable, so equal entries keep their stored
// relative order. The input slice is not modified.
func FilterSort(items []Item, query string, mode SortMode) []Item {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if q == "" || strings.Contains(strings.ToLower(it.Title), q) {
			out = append(out, it)
		}
	}

	switch mode {
	case SortAlphabetical:
		// Collators are not safe for concurrent use; build one per call.
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Title, out[j].Title) < 0
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	}
	return out
}

// FirstPlayable scans the playlist in stored order for the first media item.
// A non-embeddable hit is still returned, flagged ExternalOnly, rather than
// skipped. The second return is false when the playlist has no media items.
func FirstPlayable(pl Playlist) (PlayableRef, bool) {
	for _, it := range pl.Items {
		if it.Kind == KindMedia {
			return PlayableRef{
				ID:           it.ID,
				Title:        it.Title,
				ExternalOnly: !it.Embeddable,
			}, true
		}
	}
	return PlayableRef{}, false
}
