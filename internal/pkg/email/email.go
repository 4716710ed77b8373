package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DecisionMessage describes an application decision the volunteer is told about
type DecisionMessage struct {
	VolunteerID      int64
	ApplicationID    int64
	OpportunityID    int64
	ToEmail          string
	ToName           string
	OpportunityTitle string
	Approved         bool
}

// Notifier tells a volunteer about a decision on their application
type Notifier interface {
	SendApplicationDecision(ctx context.Context, msg DecisionMessage) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough settings are present to actually send mail
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// SMTPNotifier implements Notifier over SMTP. Without a configured host it only logs.
type SMTPNotifier struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates a new SMTPNotifier
func NewSMTPNotifier(config SMTPConfig, logger zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		config: config,
		logger: logger.With().Str("component", "email").Logger(),
		send:   smtp.SendMail,
	}
}

var decisionTemplate = template.Must(template.New("decision").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<p>Hello {{.ToName}},</p>
		{{if .Approved}}
		<p>Good news! Your application to <strong>{{.OpportunityTitle}}</strong> has been approved.</p>
		<p>The organization will be in touch with the details. Thank you for volunteering!</p>
		{{else}}
		<p>Thank you for applying to <strong>{{.OpportunityTitle}}</strong>. Unfortunately the organization could not accept your application this time.</p>
		<p>There are many other opportunities waiting for you.</p>
		{{end}}
		<p>Best regards,<br>The VolunteerHub Team</p>
	</div>
</body>
</html>`))

// SendApplicationDecision tells the volunteer whether they were approved
func (n *SMTPNotifier) SendApplicationDecision(ctx context.Context, msg DecisionMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := "Your application was not accepted"
	if msg.Approved {
		subject = "Your application was approved"
	}

	if !n.config.Enabled() {
		n.logger.Warn().
			Str("toEmail", msg.ToEmail).
			Str("subject", subject).
			Msg("SMTP not configured - decision email not sent")
		return nil
	}

	var body bytes.Buffer
	if err := decisionTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("failed to render decision email: %w", err)
	}

	return n.sendHTMLEmail(msg.ToEmail, subject, body.String())
}

func (n *SMTPNotifier) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	var message strings.Builder
	fmt.Fprintf(&message, "From: %s\r\n", n.config.From)
	fmt.Fprintf(&message, "To: %s\r\n", toEmail)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	serverAddress := n.config.Host + ":" + strconv.Itoa(n.config.Port)
	if err := n.send(serverAddress, auth, n.config.From, []string{toEmail}, []byte(message.String())); err != nil {
		n.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Debug().Str("toEmail", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}
