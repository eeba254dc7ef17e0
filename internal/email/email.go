// Package email delivers transactional mail. The default sender only logs;
// deployments front it with a real provider.
package email

import (
	"net/http"
	"net/mail"

	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/logger"
)

type Sender interface {
	Send(recipientEmail, subject, body string) error
	IsCorrect(email string) error
}

// LogSender writes outgoing mail to the log instead of the wire. Useful for
// development and as the default when no SMTP relay is configured.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) IsCorrect(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &internal_errors.ErrorWithStatusCode{Message: err.Error(), StatusCode: http.StatusBadRequest}
	}
	return nil
}

func (s *LogSender) Send(recipientEmail, subject, body string) error {
	logger.Log.Info("outgoing email", "to", recipientEmail, "subject", subject, "body", body)
	return nil
}
