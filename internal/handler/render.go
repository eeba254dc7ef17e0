package handler

import (
	"net/http"

	"github.com/tftboard/tftboard/internal/utils"
)

type renderBody struct {
	Text string `validate:"required" json:"text"`
}

// RenderPreview converts markdown to sanitized HTML so clients can show a
// preview identical to what the stored body will look like.
func (h *Handler) RenderPreview(w http.ResponseWriter, r *http.Request) {
	var body renderBody
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	html, err := h.render.Render(body.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}
