package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/logger"
)

// ReplyEvents streams reply change notifications for one post as
// server-sent events. One event per row mutation; the payload is the
// same JSON the database trigger emits. The stream ends when the client
// disconnects.
func (h *Handler) ReplyEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, &internal_errors.ErrorWithStatusCode{
			Message: "Streaming unsupported", StatusCode: http.StatusInternalServerError,
		})
		return
	}

	postId := chi.URLParam(r, "postId")
	if _, err := h.posts.Get(postId); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Buffered so a slow client drops events instead of blocking the hub.
	events := make(chan domain.ReplyChange, 16)
	unsubscribe := h.hub.Subscribe(postId, func(change domain.ReplyChange) {
		select {
		case events <- change:
		default:
		}
	})
	defer unsubscribe()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case change := <-events:
			payload, err := json.Marshal(change)
			if err != nil {
				logger.Log.Error("failed to encode reply change", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: reply_change\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
