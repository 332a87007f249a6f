package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleUpload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		dir := t.TempDir()
		srv := NewServer(dir)

		req := multipartRequest(t, "file", "My Track.mp3", []byte("ID3fakeaudio"))
		rr := httptest.NewRecorder()
		srv.HandleUpload(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			OK   bool `json:"ok"`
			File struct {
				ID    string `json:"id"`
				Type  string `json:"type"`
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"file"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.Equal(t, "mp3", resp.File.Type)
		assert.Equal(t, "My Track", resp.File.Title)
		assert.True(t, strings.HasPrefix(resp.File.URL, "/uploads/"))
		// Unsafe characters are replaced in the stored name.
		assert.NotContains(t, resp.File.ID, " ")

		data, err := os.ReadFile(filepath.Join(dir, resp.File.ID))
		require.NoError(t, err)
		assert.Equal(t, []byte("ID3fakeaudio"), data)
	})

	t.Run("rejects non-mp3", func(t *testing.T) {
		srv := NewServer(t.TempDir())

		req := multipartRequest(t, "file", "notes.txt", []byte("hello"))
		rr := httptest.NewRecorder()
		srv.HandleUpload(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "only .mp3")
	})

	t.Run("missing file field", func(t *testing.T) {
		srv := NewServer(t.TempDir())

		req := multipartRequest(t, "wrong", "track.mp3", []byte("x"))
		rr := httptest.NewRecorder()
		srv.HandleUpload(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "file field is required")
	})

	t.Run("path traversal names are neutralized", func(t *testing.T) {
		dir := t.TempDir()
		srv := NewServer(dir)

		req := multipartRequest(t, "file", "../../escape.mp3", []byte("x"))
		rr := httptest.NewRecorder()
		srv.HandleUpload(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.NotContains(t, entries[0].Name(), "..")
	})
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"track.mp3", "track.mp3"},
		{"my song (live).mp3", "my_song__live_.mp3"},
		{"../../../etc/passwd", "passwd"},
		{"", "track.mp3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}
