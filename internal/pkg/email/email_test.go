package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	body string
}

func newCapturingNotifier(cfg SMTPConfig, sendErr error) (*SMTPNotifier, *[]capturedMail) {
	var sent []capturedMail
	n := NewSMTPNotifier(cfg, zerolog.Nop())
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, capturedMail{addr: addr, from: from, to: to, body: string(msg)})
		return sendErr
	}
	return n, &sent
}

func TestSendApplicationDecision_NotConfiguredOnlyLogs(t *testing.T) {
	n, sent := newCapturingNotifier(SMTPConfig{}, nil)

	err := n.SendApplicationDecision(context.Background(), DecisionMessage{ToEmail: "v@example.org", Approved: true})
	require.NoError(t, err)
	assert.Empty(t, *sent)
}

func TestSendApplicationDecision_Approved(t *testing.T) {
	n, sent := newCapturingNotifier(SMTPConfig{Host: "smtp.example.org", Port: 2525, From: "noreply@example.org"}, nil)

	err := n.SendApplicationDecision(context.Background(), DecisionMessage{
		ToEmail:          "v@example.org",
		ToName:           "Vera",
		OpportunityTitle: "Beach <Cleanup>",
		Approved:         true,
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.org:2525", mail.addr)
	assert.Equal(t, []string{"v@example.org"}, mail.to)
	assert.Contains(t, mail.body, "Subject: Your application was approved")
	assert.Contains(t, mail.body, "Beach &lt;Cleanup&gt;")
	assert.Contains(t, mail.body, "Hello Vera")
}

func TestSendApplicationDecision_Rejected(t *testing.T) {
	n, sent := newCapturingNotifier(SMTPConfig{Host: "smtp.example.org", Port: 25, From: "noreply@example.org"}, nil)

	err := n.SendApplicationDecision(context.Background(), DecisionMessage{ToEmail: "v@example.org", OpportunityTitle: "Food bank"})
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].body, "Subject: Your application was not accepted")
}

func TestSendApplicationDecision_SendFailure(t *testing.T) {
	n, _ := newCapturingNotifier(SMTPConfig{Host: "smtp.example.org", Port: 25, From: "noreply@example.org"}, errors.New("connection refused"))

	err := n.SendApplicationDecision(context.Background(), DecisionMessage{ToEmail: "v@example.org"})
	assert.ErrorContains(t, err, "connection refused")
}
