// Package mail delivers plain-text reports through SendGrid.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

// SendGridClient sends from one fixed sender address.
type SendGridClient struct {
	apiKey string
	from   string
	host   string
	log    *slog.Logger
}

type Option func(*SendGridClient)

// WithHost points the client at another API host.
func WithHost(host string) Option { return func(c *SendGridClient) { c.host = host } }

func NewSendGridClient(apiKey, from string, log *slog.Logger, opts ...Option) *SendGridClient {
	c := &SendGridClient{apiKey: apiKey, from: from, log: log}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *SendGridClient) Send(ctx context.Context, to, subject, body string) error {
	if c.apiKey == "" {
		return errors.New("sendgrid api key is empty")
	}
	if c.from == "" {
		return errors.New("from address is empty")
	}
	if to == "" {
		return errors.New("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail("QualityPulse", c.from),
		subject,
		mail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(body)),
	)

	req := sendgrid.GetRequest(c.apiKey, sendEndpoint, c.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.log.Error("sendgrid rejected mail", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("sendgrid send failed: status=%d", resp.StatusCode)
	}
	c.log.Info("mail sent", "status", resp.StatusCode, "to", to, "subject", subject)
	return nil
}
