// Package upload stores user MP3 files on local disk and hands back a
// playlist-ready descriptor pointing at the public /uploads/ path.
package upload

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/lilights/tunedeck/internal/api"
)

const maxUploadBytes = 25 << 20 // 25 MiB

type Server struct {
	dir string
}

func NewServer(dir string) *Server {
	return &Server{dir: dir}
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "track.mp3"
	}
	return name
}

// HandleUpload accepts a multipart "file" field holding an MP3 and returns
// an item descriptor the client can post straight into a playlist.
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "file field is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".mp3") {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "only .mp3 files are accepted")
		return
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("tunedeck: upload: mkdir: %v", err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
		return
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(header.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		log.Printf("tunedeck: upload: create: %v", err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("tunedeck: upload: copy: %v", err)
		api.WriteError(w, http.StatusInternalServerError, api.KindInternal, "internal error")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"file": map[string]any{
			"id":    name,
			"type":  "mp3",
			"title": title,
			"url":   "/uploads/" + name,
		},
	})
}
