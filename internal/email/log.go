package email

import (
	"context"
	"log/slog"
)

// LogSender writes the tokens to the log instead of sending mail. It
// stands in for Mailer in local development when no SMTP server is
// configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) SendVerification(ctx context.Context, to, token string) error {
	s.Logger.Info("verification email (not sent, SMTP unconfigured)",
		slog.String("to", to),
		slog.String("token", token),
	)
	return nil
}

func (s *LogSender) SendPasswordReset(ctx context.Context, to, token string) error {
	s.Logger.Info("password reset email (not sent, SMTP unconfigured)",
		slog.String("to", to),
		slog.String("token", token),
	)
	return nil
}
