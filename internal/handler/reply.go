package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/middleware"
	"github.com/tftboard/tftboard/internal/utils"
)

type replyBody struct {
	Body    string `validate:"required" json:"body"`
	QuoteId string `json:"parent_id"`
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	userId, ok := middleware.UserIdFromContext(r.Context())
	if !ok {
		writeError(w, &internal_errors.ErrorWithStatusCode{
			Message: "Not signed in", StatusCode: http.StatusUnauthorized,
		})
		return
	}

	var body replyBody
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	principal, err := h.auth.Me(userId)
	if err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.replies.Create(principal, chi.URLParam(r, "postId"), body.Body, body.QuoteId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reply)
}

// ListReplies serves one page in rank order. The exact total goes out in
// X-Total-Count so a client can page without a second count request.
func (h *Handler) ListReplies(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	rows, total, err := h.replies.List(chi.URLParam(r, "postId"), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) GetReply(w http.ResponseWriter, r *http.Request) {
	reply, err := h.replies.Get(chi.URLParam(r, "replyId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// ReplyRank reports the reply's 1-based position within its post's creation
// order. Clients turn it into a page number themselves.
func (h *Handler) ReplyRank(w http.ResponseWriter, r *http.Request) {
	rank, err := h.replies.Rank(chi.URLParam(r, "replyId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"rank": rank})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
