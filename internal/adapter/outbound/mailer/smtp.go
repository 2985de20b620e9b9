package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/uniedit/orgauth/internal/domain/invitation"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("mail delivery temporarily unavailable")

// SMTPConfig holds SMTP configuration.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string

	// BreakerFailures consecutive failures open the breaker for
	// BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends invitation emails over SMTP.
type SMTPNotifier struct {
	config  *SMTPConfig
	dialer  dialer
	breaker *gobreaker.CircuitBreaker[any]
	tmpl    *template.Template
	logger  *zap.Logger
}

// NewSMTPNotifier creates a new SMTP notifier.
func NewSMTPNotifier(config *SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	return newSMTPNotifier(config, gomail.NewDialer(config.Host, config.Port, config.User, config.Password), logger)
}

func newSMTPNotifier(config *SMTPConfig, d dialer, logger *zap.Logger) *SMTPNotifier {
	if config.BreakerFailures == 0 {
		config.BreakerFailures = 5
	}
	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = 30 * time.Second
	}
	failures := config.BreakerFailures

	return &SMTPNotifier{
		config: config,
		dialer: d,
		breaker: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        "smtp",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("mail circuit breaker state changed",
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
		tmpl:   template.Must(template.New("invitation").Parse(invitationEmailTemplate)),
		logger: logger,
	}
}

var _ invitation.Notifier = (*SMTPNotifier)(nil)

// NotifyInvitation emails the invitation link to the recipient.
func (s *SMTPNotifier) NotifyInvitation(ctx context.Context, n *invitation.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, n); err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	m := gomail.NewMessage()
	if s.config.FromName != "" {
		m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	} else {
		m.SetHeader("From", s.config.FromAddress)
	}
	m.SetHeader("To", n.Email)
	m.SetHeader("Subject", fmt.Sprintf("You're invited to join %s", n.OrgName))
	m.SetBody("text/html", body.String())

	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.dialer.DialAndSend(m)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrUnavailable
		}
		s.logger.Error("failed to send invitation email",
			zap.String("invitation_id", n.InvitationID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("invitation email sent", zap.String("invitation_id", n.InvitationID.String()))
	return nil
}

const invitationEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #4F46E5; color: white; text-decoration: none; border-radius: 6px; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Join {{.OrgName}}</h1>
        <p>You have been invited to join <strong>{{.OrgName}}</strong> as {{.Role}}.</p>
        {{if .AcceptURL}}
        <p><a href="{{.AcceptURL}}" class="button">View invitation</a></p>
        <p>Or copy and paste this link into your browser:</p>
        <p>{{.AcceptURL}}</p>
        {{else}}
        <p>Your invitation code:</p>
        <p><code>{{.Token}}</code></p>
        {{end}}
        <p>This invitation expires on {{.ExpiresAt.Format "Jan 2, 2006 15:04 MST"}}.</p>
        <div class="footer">
            <p>If you weren't expecting this invitation, you can safely ignore this email.</p>
        </div>
    </div>
</body>
</html>
`
