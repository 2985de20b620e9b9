// Package mailer delivers invitation notifications.
package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/uniedit/orgauth/internal/domain/invitation"
)

// LogNotifier records invitations in the log instead of sending them.
// It is used when no SMTP host is configured. The token is not logged.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ invitation.Notifier = (*LogNotifier)(nil)

// NotifyInvitation logs but doesn't send.
func (n *LogNotifier) NotifyInvitation(_ context.Context, note *invitation.Notification) error {
	n.logger.Info("invitation email (no-op)",
		zap.String("invitation_id", note.InvitationID.String()),
		zap.String("org_id", note.OrgID.String()),
		zap.String("email", note.Email),
		zap.String("role", note.Role.String()),
	)
	return nil
}
