// Package notification delivers generated passwords by email.
package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/mnibras/user-manager-api/internal/logger"
	"github.com/mnibras/user-manager-api/internal/model"
)

var _ model.Notifier = (*SMTPNotifier)(nil)

const passwordSubject = "Your new account password"

// SMTPNotifier sends generated passwords over SMTP. Callers treat
// delivery as fire-and-forget; a failed send is theirs to log, not to
// fail the operation on.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *logger.Logger
	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates a notifier for the given SMTP relay.
func NewSMTPNotifier(host string, port int, username, password, from string, logger *logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

// SendGeneratedPassword emails the one-time generated password to the
// user. The password itself is never logged.
func (n *SMTPNotifier) SendGeneratedPassword(ctx context.Context, firstName, password, email string) error {
	body := fmt.Sprintf("Hello %s,\r\n\r\nYour new account password is: %s\r\n\r\nThe Support Team", firstName, password)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		n.from, email, passwordSubject, body)

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.host)

	if err := n.send(addr, auth, n.from, []string{email}, []byte(msg)); err != nil {
		n.logger.Error("Notification: failed to send password email",
			"email", email,
			"error", err.Error())
		return fmt.Errorf("failed to send password email: %w", err)
	}

	n.logger.Info("Notification: password email sent",
		"email", email)

	return nil
}
