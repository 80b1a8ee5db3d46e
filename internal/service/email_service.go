package service

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// ==============================================
// MAILER INTERFACE
// ==============================================

// Mailer delivers reset-flow notifications. Implementations are injected
// into the reset service so tests can substitute a fake gateway.
type Mailer interface {
	SendResetCode(ctx context.Context, email, code string) error
	SendPasswordChanged(ctx context.Context, email string) error
}

// ==============================================
// SMTP MAILER
// ==============================================

type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

type SMTPMailer struct {
	opts SMTPOptions
}

func NewSMTPMailer(opts SMTPOptions) (*SMTPMailer, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if opts.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &SMTPMailer{opts: opts}, nil
}

// ==============================================
// SEND OPERATIONS
// ==============================================

func (m *SMTPMailer) SendResetCode(ctx context.Context, email, code string) error {
	subject := "Reset Your Password - RetailOps Back Office"
	body := fmt.Sprintf(`Hello,

We received a request to reset your password.

Your password reset code is: %s

This code will expire in 10 minutes.

If you didn't request this, please ignore this email and your password will remain unchanged.

Best regards,
RetailOps Team
`, code)

	return m.send(ctx, email, subject, body)
}

func (m *SMTPMailer) SendPasswordChanged(ctx context.Context, email string) error {
	subject := "Your Password Was Changed - RetailOps Back Office"
	body := `Hello,

The password for your account was just changed using a reset code.

If this was you, no further action is needed.

If you didn't change your password, please contact support immediately.

Best regards,
RetailOps Team
`

	return m.send(ctx, email, subject, body)
}

// ==============================================
// SMTP TRANSPORT
// ==============================================

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if m.opts.FromName != "" {
		if err := msg.FromFormat(m.opts.FromName, m.opts.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(m.opts.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.opts.Port),
	}

	if m.opts.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS (SSL) for port 465, STARTTLS for others
		if m.opts.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.opts.Username != "" && m.opts.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.opts.Username),
			mail.WithPassword(m.opts.Password),
		)
	}

	client, err := mail.NewClient(m.opts.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
