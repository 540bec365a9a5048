package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dgardezi/charades.me/internal/directory"
	"github.com/dgardezi/charades.me/internal/registry"
	"github.com/dgardezi/charades.me/internal/ws"
)

func SetupRoutes(reg *registry.Registry, dir *directory.Directory, gw *ws.Gateway, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(dir, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(reg, dir, gw, log))
	return r
}
