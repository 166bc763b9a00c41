package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// SMTPMailer opens one SMTP connection per message.
type SMTPMailer struct {
	server *mail.SMTPServer
	from   string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	server := mail.NewSMTPClient()
	server.Host = cfg.SMTPHost
	server.Port = cfg.SMTPPort
	server.Username = cfg.SMTPUser
	server.Password = cfg.SMTPPassword
	server.Encryption = mail.EncryptionSTARTTLS
	server.TLSConfig = &tls.Config{InsecureSkipVerify: cfg.SkipTLSVerify, ServerName: cfg.SMTPHost}
	server.ConnectTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	server.SendTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	server.KeepAlive = false

	return &SMTPMailer{
		server: server,
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	email := mail.NewMSG()
	email.SetFrom(m.from).AddTo(msg.To).SetSubject(msg.Subject)
	email.SetBody(mail.TextHTML, msg.HTMLBody)
	if msg.TextBody != "" {
		email.AddAlternative(mail.TextPlain, msg.TextBody)
	}
	if email.Error != nil {
		return fmt.Errorf("failed to build message: %w", email.Error)
	}

	client, err := m.server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer client.Close()

	if err := email.Send(client); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
