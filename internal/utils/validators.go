package utils

import (
	"net/http"
	"strings"
	"unicode/utf8"

	internal_errors "github.com/tftboard/tftboard/internal/errors"
)

type PostValidator struct {
	MaxTitleLen int
	MaxBodyLen  int
}

func (v *PostValidator) Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return &internal_errors.ErrorWithStatusCode{Message: "Title is empty", StatusCode: http.StatusBadRequest}
	}
	if utf8.RuneCountInString(title) > v.MaxTitleLen {
		return &internal_errors.ErrorWithStatusCode{Message: "Title is too long", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func (v *PostValidator) Body(body string) error {
	if strings.TrimSpace(body) == "" {
		return &internal_errors.ErrorWithStatusCode{Message: "Body is empty", StatusCode: http.StatusBadRequest}
	}
	if utf8.RuneCountInString(body) > v.MaxBodyLen {
		return &internal_errors.ErrorWithStatusCode{Message: "Body is too long", StatusCode: http.StatusBadRequest}
	}
	return nil
}

type ReplyValidator struct {
	MaxBodyLen int
}

func (v *ReplyValidator) Body(body string) error {
	if strings.TrimSpace(body) == "" {
		return &internal_errors.ErrorWithStatusCode{Message: "Reply is empty", StatusCode: http.StatusBadRequest}
	}
	if utf8.RuneCountInString(body) > v.MaxBodyLen {
		return &internal_errors.ErrorWithStatusCode{Message: "Reply is too long", StatusCode: http.StatusBadRequest}
	}
	return nil
}

type PasswordValidator struct{}

func (v *PasswordValidator) Password(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return &internal_errors.ErrorWithStatusCode{Message: "Password must be at least 8 characters", StatusCode: http.StatusBadRequest}
	}
	return nil
}
