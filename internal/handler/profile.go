package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/middleware"
	"github.com/tftboard/tftboard/internal/utils"
)

type profileBody struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
}

// UpsertProfile writes the caller's own profile row. Empty fields keep
// whatever value is already stored.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userId, ok := middleware.UserIdFromContext(r.Context())
	if !ok {
		writeError(w, &internal_errors.ErrorWithStatusCode{
			Message: "Not signed in", StatusCode: http.StatusUnauthorized,
		})
		return
	}

	var body profileBody
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	err := h.profiles.Upsert(domain.Profile{
		Id:          userId,
		DisplayName: body.DisplayName,
		Bio:         body.Bio,
		AvatarURL:   body.AvatarURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.ById(chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) GetProfileByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("display_name")
	if name == "" {
		writeError(w, &internal_errors.ErrorWithStatusCode{
			Message: "Missing display_name", StatusCode: http.StatusBadRequest,
		})
		return
	}

	profile, err := h.profiles.ByName(name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
