// Package notification delivers best-effort provider notifications. Failures
// are logged and never affect the operation that triggered them.
package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/centralevents/central-events-api/internal/domain"
)

type Notifier interface {
	NotifyNewRequest(ctx context.Context, toEmail, companyName string, request domain.QuoteRequest) error
}

// LogNotifier is the default sink when no mail transport is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyNewRequest(_ context.Context, toEmail, companyName string, request domain.QuoteRequest) error {
	zap.L().Info("new quote request notification",
		zap.String("to", toEmail),
		zap.String("company", companyName),
		zap.Uint("request_id", request.ID),
		zap.String("event_type", request.EventType),
	)

	return nil
}

// SMTPNotifier sends plain-text mail over a configured relay.
type SMTPNotifier struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPNotifier(addr, from string, auth smtp.Auth) *SMTPNotifier {
	return &SMTPNotifier{
		addr: addr,
		from: from,
		auth: auth,
	}
}

func (n *SMTPNotifier) NotifyNewRequest(_ context.Context, toEmail, companyName string, request domain.QuoteRequest) error {
	subject := fmt.Sprintf("New quote request: %s", request.EventType)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nYou received a new quote request from %s (%s).\r\n\r\nEvent type: %s\r\n\r\n%s\r\n\r\nLog in to your provider dashboard to respond.\r\n",
		companyName, request.ContactName, request.Email, request.EventType, request.Message,
	)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", n.from, toEmail, subject, body)

	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{toEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp.SendMail -> %w", err)
	}

	return nil
}
