package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/jmartin/coursehub/internal/config"
)

var activationTemplate = template.Must(template.New("activation").Parse(`<html>
<body style="font-family: sans-serif;">
  <h2>Hello {{.FirstName}},</h2>
  <p>Thank you for registering. Use the code below to activate your account.</p>
  <p style="font-size: 28px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
  <p>The code expires in 5 minutes. If you did not request this, ignore this email.</p>
</body>
</html>`))

// SMTPMailer delivers activation mail over plain SMTP with auth.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendActivationEmail(_ context.Context, email, firstName, code string) error {
	var body bytes.Buffer
	err := activationTemplate.Execute(&body, struct {
		FirstName string
		Code      string
	}{FirstName: firstName, Code: code})
	if err != nil {
		return fmt.Errorf("render activation mail: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", email)
	fmt.Fprintf(&msg, "Subject: Activate your account\r\n")
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, msg.Bytes()); err != nil {
		return fmt.Errorf("send activation mail: %w", err)
	}
	return nil
}
