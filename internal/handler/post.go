package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/middleware"
	"github.com/tftboard/tftboard/internal/utils"
)

type postBody struct {
	Title string `validate:"required" json:"title"`
	Body  string `validate:"required" json:"body"`
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userId, ok := middleware.UserIdFromContext(r.Context())
	if !ok {
		writeError(w, &internal_errors.ErrorWithStatusCode{
			Message: "Not signed in", StatusCode: http.StatusUnauthorized,
		})
		return
	}

	var body postBody
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	principal, err := h.auth.Me(userId)
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(principal, body.Title, body.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// postView is the post payload, optionally extended with a resolved deep
// link when the request carries ?comment=<replyId>.
type postView struct {
	*domain.Post
	CommentRank int `json:"comment_rank,omitempty"`
	CommentPage int `json:"comment_page,omitempty"`
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err)
		return
	}

	view := postView{Post: post}
	if anchor := r.URL.Query().Get("comment"); anchor != "" {
		// A broken deep link (missing reply, or one on another post)
		// degrades to the plain post instead of failing the request.
		if reply, err := h.replies.Get(anchor); err == nil && reply.PostId == post.Id {
			if rank, err := h.replies.Rank(anchor); err == nil {
				view.CommentRank = rank
				view.CommentPage = domain.PageOf(rank, domain.PageSize)
			}
		}
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}
