package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tftboard/tftboard/internal/config"
	"github.com/tftboard/tftboard/internal/logger"
	"github.com/tftboard/tftboard/internal/markdown"
	"github.com/tftboard/tftboard/internal/realtime"
	"github.com/tftboard/tftboard/internal/service"
	"github.com/tftboard/tftboard/internal/utils"
)

type Handler struct {
	auth     service.AuthService
	posts    service.PostService
	replies  service.ReplyService
	profiles service.ProfileService
	hub      *realtime.Hub
	render   *markdown.Renderer
	cfg      *config.Config
}

func New(auth service.AuthService, posts service.PostService, replies service.ReplyService, profiles service.ProfileService, hub *realtime.Hub, render *markdown.Renderer, cfg *config.Config) *Handler {
	return &Handler{auth, posts, replies, profiles, hub, render, cfg}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	utils.WriteErrorAndStatusCode(w, err)
}
