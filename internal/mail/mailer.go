// Package mail delivers verification codes. The transport is injected
// behind the Mailer interface so the reset service never deals with SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Mailer sends a verification code to an email address.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// SMTPMailer delivers codes over SMTP.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailer creates a mailer for the given SMTP account.
func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from}
}

// SendVerificationCode sends the password-recovery code to the recipient.
func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject("Código de Recuperação de Senha - CINEHOME")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Seu código de verificação é: %s\n\n"+
			"Este código expira em 10 minutos.\n\n"+
			"Se você não solicitou esta recuperação, ignore este email.\n", code))

	client, err := gomail.NewClient(m.host,
		gomail.WithPort(m.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.user),
		gomail.WithPassword(m.pass),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}
