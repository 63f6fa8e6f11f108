// Package email sends the transactional mail the auth flows depend on:
// the verification link after registration and the reset link for
// forgotten passwords.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// Sender is what the auth service depends on. The production
// implementation is Mailer (SMTP via go-mail); tests substitute an
// in-memory fake that records the tokens it was asked to deliver.
//
// Send failures are real failures: the flows surface them to the caller
// instead of reporting success for an email nobody will receive.
type Sender interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Config holds the SMTP settings plus the frontend base URL that the
// emailed links point at. The links land on frontend pages (the
// verify and reset-password screens), which then call the API with the
// token.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // sender address, e.g. no-reply@joovlink.com
	FromName string // display name, e.g. "Joovlink"
	TLS      bool

	FrontendURL string // e.g. https://app.joovlink.com
}

// Mailer sends email over SMTP using go-mail.
type Mailer struct {
	cfg Config
}

// NewMailer validates the config and returns a Mailer.
func NewMailer(cfg Config) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("email: SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("email: from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	cfg.FrontendURL = strings.TrimSuffix(cfg.FrontendURL, "/")
	return &Mailer{cfg: cfg}, nil
}

// SendVerification emails the account-verification link embedding the
// raw one-time token.
func (m *Mailer) SendVerification(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s", m.cfg.FrontendURL, token)

	html := fmt.Sprintf(`<h2>Welcome to Joovlink 👋</h2>
<p>Please click the button below to verify your account:</p>
<a href="%[1]s" style="padding:10px 20px;background:#007bff;color:#fff;border-radius:5px;text-decoration:none;">Verify Email</a>
<p>Or open this link manually:<br />%[1]s</p>`, link)

	plain := fmt.Sprintf("Welcome to Joovlink!\n\nVerify your account by opening this link:\n%s\n", link)

	return m.send(ctx, to, "Verify your email", html, plain)
}

// SendPasswordReset emails the password-reset link embedding the raw
// one-time token.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.FrontendURL, token)

	html := fmt.Sprintf(`<h2>Reset Your Password</h2>
<p>Click the button below to reset your password:</p>
<a href="%[1]s" style="padding:10px 20px;background:#dc3545;color:#fff;border-radius:5px;text-decoration:none;">Reset Password</a>
<p>Or open this link manually:<br />%[1]s</p>`, link)

	plain := fmt.Sprintf("Reset your Joovlink password by opening this link:\n%s\n\nIf you did not request this, ignore this email.\n", link)

	return m.send(ctx, to, "Reset your password", html, plain)
}

func (m *Mailer) send(ctx context.Context, to, subject, html, plain string) error {
	msg := mail.NewMsg()

	if m.cfg.FromName != "" {
		if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
			return fmt.Errorf("email: setting from address: %w", err)
		}
	} else {
		if err := msg.From(m.cfg.From); err != nil {
			return fmt.Errorf("email: setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("email: setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, plain)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}

	if m.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Port 465 is implicit TLS; everything else negotiates STARTTLS.
		if m.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("email: creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("email: sending to %s: %w", to, err)
	}

	return nil
}
