package provider

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lilights/tunedeck/internal/api"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "q is required")
		return
	}
	if len(q) > 200 {
		api.WriteError(w, http.StatusBadRequest, api.KindInvalidArgument, "q is too long")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 && v <= 25 {
			limit = v
		}
	}

	if items, ok := s.cached(r, q, limit); ok {
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
		return
	}

	items, err := s.provider.Search(r.Context(), q, limit)
	if err != nil {
		api.WriteError(w, http.StatusBadGateway, api.KindUpstream, "failed to query provider")
		return
	}

	s.cache(r, q, limit, items)
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func cacheKey(q string, limit int) string {
	return "yt:search:" + strconv.Itoa(limit) + ":" + strings.ToLower(q)
}

// cached serves a previous result for the same query; a missing or broken
// cache entry falls through to the live provider.
func (s *Server) cached(r *http.Request, q string, limit int) ([]MediaDescriptor, bool) {
	if s.rdb == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(r.Context(), cacheKey(q, limit)).Bytes()
	if err != nil {
		return nil, false
	}
	var items []MediaDescriptor
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (s *Server) cache(r *http.Request, q string, limit int, items []MediaDescriptor) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	// Cache write failures only cost the next caller a provider round trip.
	_ = s.rdb.Set(r.Context(), cacheKey(q, limit), raw, s.cacheTTL).Err()
}
