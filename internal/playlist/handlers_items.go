package playlist

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lilights/tunedeck/internal/api"
)

// itemBody is the client-supplied part of an item; the store fills in the
// server fields (addedAt, normalized rating).
type itemBody struct {
	ID          string `json:"id"`
	Kind        string `json:"type"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	DurationSec int    `json:"durationSec"`
	Views       int64  `json:"views"`
	Embeddable  *bool  `json:"embeddable"`
	Rating      int    `json:"rating"`
}

func (b itemBody) toItem() (Item, bool) {
	b.ID = strings.TrimSpace(b.ID)
	b.Kind = strings.TrimSpace(b.Kind)
	if b.ID == "" || b.Kind == "" {
		return Item{}, false
	}
	kind := MediaKind(b.Kind)
	if kind != KindMedia && kind != KindAudioFile {
		return Item{}, false
	}
	return Item{
		ID:          b.ID,
		Kind:        kind,
		Title:       strings.TrimSpace(b.Title),
		Thumbnail:   b.Thumbnail,
		DurationSec: b.DurationSec,
		Views:       b.Views,
		// Only an explicit false marks a video as non-embeddable.
		Embeddable: b.Embeddable == nil || *b.Embeddable,
		Rating:     b.Rating,
	}, true
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	playlistID := chi.URLParam(r, "playlistId")

	pl, err := s.findPlaylist(r, userID, playlistID)
	if err != nil {
		writeStoreError(w, "list items", err)
		return
	}

	mode := SortRating
	if r.URL.Query().Get("sort") == string(SortAlphabetical) {
		mode = SortAlphabetical
	}
	items := FilterSort(pl.Items, r.URL.Query().Get("query"), mode)

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"items": items,
	})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	playlistID := chi.URLParam(r, "playlistId")

	var body itemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "invalid JSON body")
		return
	}

	item, ok := body.toItem()
	if !ok {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "item must include id and type")
		return
	}

	added, err := s.store.AddItem(r.Context(), userID, playlistID, item)
	if err != nil {
		writeStoreError(w, "add item", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"item": added,
	})
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	playlistID := chi.URLParam(r, "playlistId")
	itemID := chi.URLParam(r, "itemId")

	// Absent rating normalizes to 0; out-of-range values are rejected by the
	// store rather than clamped.
	var body struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "invalid JSON body")
		return
	}

	item, err := s.store.UpdateItemRating(r.Context(), userID, playlistID, itemID, body.Rating)
	if err != nil {
		writeStoreError(w, "update rating", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"item": item,
	})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	playlistID := chi.URLParam(r, "playlistId")
	itemID := chi.URLParam(r, "itemId")

	if err := s.store.DeleteItem(r.Context(), userID, playlistID, itemID); err != nil {
		writeStoreError(w, "delete item", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleSave routes a search result (or upload) into a playlist in one call:
// either an existing playlist by id, or a playlist created on the spot from
// newPlaylistName. Creation is sequential and is not rolled back when the
// subsequent add fails, e.g. on a duplicate conflict.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var body struct {
		PlaylistID      string   `json:"playlistId"`
		NewPlaylistName string   `json:"newPlaylistName"`
		Item            itemBody `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "invalid JSON body")
		return
	}

	item, ok := body.Item.toItem()
	if !ok {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "item must include id and type")
		return
	}

	targetID := strings.TrimSpace(body.PlaylistID)
	if name := strings.TrimSpace(body.NewPlaylistName); name != "" {
		pl, err := s.store.CreatePlaylist(r.Context(), userID, name)
		if err != nil {
			writeStoreError(w, "save create playlist", err)
			return
		}
		targetID = pl.ID
	}
	if targetID == "" {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "playlistId or newPlaylistName required")
		return
	}

	added, err := s.store.AddItem(r.Context(), userID, targetID, item)
	if err != nil {
		writeStoreError(w, "save add item", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"playlistId": targetID,
		"item":       added,
	})
}
