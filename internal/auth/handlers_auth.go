package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lilights/tunedeck/internal/api"
	"github.com/lilights/tunedeck/internal/playlist"
	"github.com/lilights/tunedeck/internal/validate"
)

type registerBody struct {
	Username    string `json:"username" validate:"required,min=3,max=40"`
	Password    string `json:"password" validate:"required,min=6,max=200"`
	DisplayName string `json:"displayName" validate:"max=80"`
	AvatarURL   string `json:"avatarUrl" validate:"omitempty,url"`
}

func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "invalid JSON body")
		return
	}

	body.Username = strings.TrimSpace(strings.ToLower(body.Username))
	body.DisplayName = strings.TrimSpace(body.DisplayName)

	if errs := validate.Map(body); errs != nil {
		api.WriteJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("tunedeck: register: hash: %v", err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
		return
	}

	user, err := s.store.CreateUser(r.Context(), playlist.NewUser{
		Username:     body.Username,
		DisplayName:  body.DisplayName,
		AvatarURL:    body.AvatarURL,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, playlist.ErrUsernameTaken) {
			api.WriteError(w, http.StatusConflict, api.KindConflict, "username already registered")
			return
		}
		log.Printf("tunedeck: register: create user: %v", err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.Printf("tunedeck: register: issue token: %v", err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"ok":    true,
		"token": token,
		"user":  toSafeUser(user),
	})
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "invalid JSON body")
		return
	}

	body.Username = strings.TrimSpace(strings.ToLower(body.Username))
	if body.Username == "" || body.Password == "" {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "username and password are required")
		return
	}

	user, err := s.store.FindUserByUsername(r.Context(), body.Username)
	if err != nil {
		if errors.Is(err, playlist.ErrUserNotFound) {
			// Same answer as a bad password; no account probing.
			api.WriteError(w, http.StatusUnauthorized, api.KindUnauthorized, "invalid credentials")
			return
		}
		log.Printf("tunedeck: login: find user: %v", err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		api.WriteError(w, http.StatusUnauthorized, api.KindUnauthorized, "invalid credentials")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.Printf("tunedeck: login: issue token: %v", err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"token": token,
		"user":  toSafeUser(user),
	})
}
