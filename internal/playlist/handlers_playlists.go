package playlist

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lilights/tunedeck/internal/api"
)

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	playlists, err := s.store.ListPlaylists(r.Context(), userID)
	if err != nil {
		writeStoreError(w, "list playlists", err)
		return
	}

	// The active selection is re-derived from the request on every call; the
	// server keeps no view state between requests.
	activeID := ActivePlaylistID(playlists, r.URL.Query().Get("active"))

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"playlists": playlists,
		"activeId":  activeID,
	})
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || len(body.Name) > 200 {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "name must be between 1 and 200 characters")
		return
	}

	pl, err := s.store.CreatePlaylist(r.Context(), userID, body.Name)
	if err != nil {
		writeStoreError(w, "create playlist", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"playlist": pl,
	})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	playlistID := chi.URLParam(r, "playlistId")

	if err := s.store.DeletePlaylist(r.Context(), userID, playlistID); err != nil {
		writeStoreError(w, "delete playlist", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handlePlayable(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	playlistID := chi.URLParam(r, "playlistId")

	pl, err := s.findPlaylist(r, userID, playlistID)
	if err != nil {
		writeStoreError(w, "playable fetch", err)
		return
	}

	ref, ok := FirstPlayable(pl)
	if !ok {
		api.WriteError(w, http.StatusNotFound, api.KindNotFound, "no playable item")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"playable": ref,
	})
}

// findPlaylist resolves one playlist through the store's list operation; the
// store contract deliberately has no per-playlist getter.
func (s *Server) findPlaylist(r *http.Request, userID, playlistID string) (Playlist, error) {
	playlists, err := s.store.ListPlaylists(r.Context(), userID)
	if err != nil {
		return Playlist{}, err
	}
	for _, pl := range playlists {
		if pl.ID == playlistID {
			return pl, nil
		}
	}
	return Playlist{}, ErrPlaylistNotFound
}
