package handler

import (
	"net/http"

	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/middleware"
	"github.com/tftboard/tftboard/internal/utils"
)

type credentials struct {
	Email       string `validate:"required,email" json:"email"`
	Password    string `validate:"required" json:"password"`
	DisplayName string `json:"display_name"`
}

type emailBody struct {
	Email string `validate:"required,email" json:"email"`
}

type confirmResetBody struct {
	Email    string `validate:"required,email" json:"email"`
	Code     string `validate:"required" json:"code"`
	Password string `validate:"required" json:"password"`
}

type updateUserBody struct {
	Password    *string `json:"password"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := utils.DecodeValidate(r.Body, &creds); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.auth.SignUp(creds.Email, creds.Password, creds.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, session)
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := utils.DecodeValidate(r.Body, &creds); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.auth.SignIn(creds.Email, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, session)
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := refreshTokenFromRequest(r); token != "" {
		if err := h.auth.SignOut(token); err != nil {
			writeError(w, err)
			return
		}
	}

	h.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	if token == "" {
		writeError(w, &internal_errors.ErrorWithStatusCode{
			Message: "Missing refresh token", StatusCode: http.StatusUnauthorized,
		})
		return
	}

	session, err := h.auth.Refresh(token)
	if err != nil {
		h.clearSessionCookies(w)
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, session)
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userId, ok := middleware.UserIdFromContext(r.Context())
	if !ok {
		writeError(w, &internal_errors.ErrorWithStatusCode{
			Message: "Not signed in", StatusCode: http.StatusUnauthorized,
		})
		return
	}

	principal, err := h.auth.Me(userId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, principal)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.ResetPassword(body.Email); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var body confirmResetBody
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.auth.ConfirmReset(body.Email, body.Code, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, session)
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.Resend(body.Email); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userId, ok := middleware.UserIdFromContext(r.Context())
	if !ok {
		writeError(w, &internal_errors.ErrorWithStatusCode{
			Message: "Not signed in", StatusCode: http.StatusUnauthorized,
		})
		return
	}

	var body updateUserBody
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	principal, err := h.auth.UpdateUser(userId, domain.UserUpdate{
		Password:    body.Password,
		DisplayName: body.DisplayName,
		AvatarURL:   body.AvatarURL,
		Bio:         body.Bio,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, principal)
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, session *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    session.AccessToken,
		MaxAge:   int(h.cfg.Public.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Path:     "/v1/auth",
		Name:     "refreshToken",
		Value:    session.RefreshToken,
		MaxAge:   int(h.cfg.Public.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Path: "/", Name: "accessToken", Value: "", MaxAge: -1, HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Path: "/v1/auth", Name: "refreshToken", Value: "", MaxAge: -1, HttpOnly: true,
	})
}

// refreshTokenFromRequest prefers the cookie. Non-browser clients send the
// token in the body instead, as {"refresh_token": "..."}.
func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := utils.DecodeValidate(r.Body, &body); err == nil {
		return body.RefreshToken
	}
	return ""
}
