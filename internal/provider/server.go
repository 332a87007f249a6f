package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lilights/tunedeck/internal/api"
)

type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]MediaDescriptor, error)
}

type Server struct {
	provider Provider
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewServer(p Provider, rdb *redis.Client, cacheTTL time.Duration) *Server {
	return &Server{
		provider: p,
		rdb:      rdb,
		cacheTTL: cacheTTL,
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "tunedeck",
	})
}
