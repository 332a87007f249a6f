package playlist

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lilights/tunedeck/internal/api"
)

type Server struct {
	store Store
}

func NewServer(store Store) *Server {
	return &Server{store: store}
}

// Routes is mounted under /users/{userId} in main; ownership of that userId
// has already been checked by the auth middleware by the time these run.
func (s *Server) Routes(r chi.Router) {
	r.Get("/playlists", s.handleListPlaylists)
	r.Post("/playlists", s.handleCreatePlaylist)
	r.Delete("/playlists/{playlistId}", s.handleDeletePlaylist)

	r.Get("/playlists/{playlistId}/items", s.handleListItems)
	r.Post("/playlists/{playlistId}/items", s.handleAddItem)
	r.Patch("/playlists/{playlistId}/items/{itemId}", s.handleUpdateRating)
	r.Delete("/playlists/{playlistId}/items/{itemId}", s.handleDeleteItem)

	r.Get("/playlists/{playlistId}/playable", s.handlePlayable)

	r.Post("/saves", s.handleSave)
}

// writeStoreError maps the store's sentinel errors onto the HTTP error
// taxonomy; anything unrecognized is logged and reported as internal.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrPlaylistNotFound),
		errors.Is(err, ErrItemNotFound):
		api.WriteError(w, http.StatusNotFound, api.KindNotFound, err.Error())
	case errors.Is(err, ErrDuplicateItem), errors.Is(err, ErrUsernameTaken):
		api.WriteError(w, http.StatusConflict, api.KindConflict, err.Error())
	case errors.Is(err, ErrBlankName),
		errors.Is(err, ErrMissingIdentity),
		errors.Is(err, ErrRatingOutOfRange):
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, err.Error())
	default:
		log.Printf("tunedeck: %s: %v", op, err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
	}
}
