package email

import (
	"context"
	"errors"
	"testing"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type captureSender struct {
	to, subject, html, text string
	err                     error
}

func (c *captureSender) Send(to, subject, htmlBody, textBody string) error {
	c.to, c.subject, c.html, c.text = to, subject, htmlBody, textBody
	return c.err
}

func TestMailer_SendConfirmation(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)

	cs := &captureSender{}
	m := NewMailer(cs, tpl, "https://api.example.com/", "")
	require.NoError(t, m.SendConfirmation(context.Background(), "ada@example.com", "Ada <3", "tok en", 72*time.Hour))

	assert.Equal(t, "ada@example.com", cs.to)
	assert.Equal(t, ConfirmSubject, cs.subject)
	assert.Contains(t, cs.text, "https://api.example.com/v2/early-access/confirm?token=tok+en")
	assert.Contains(t, cs.text, "3 days")
	assert.Contains(t, cs.text, "Hi Ada <3,")
	// html escapa el nombre
	assert.Contains(t, cs.html, "Ada &lt;3")
	assert.Contains(t, cs.html, "Ayen Early Access")
}

func TestMailer_SendError(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)

	boom := errors.New("boom")
	m := NewMailer(&captureSender{err: boom}, tpl, "http://x", "Ayen")
	err = m.SendConfirmation(context.Background(), "a@b.com", "A", "t", time.Hour)
	assert.ErrorIs(t, err, boom)
}

func TestHumanTTL(t *testing.T) {
	assert.Equal(t, "1 day", humanTTL(24*time.Hour))
	assert.Equal(t, "1 hour", humanTTL(time.Hour))
	assert.Equal(t, "5 hours", humanTTL(5*time.Hour))
	assert.Equal(t, "1h30m0s", humanTTL(90*time.Minute))
	assert.Equal(t, "a few days", humanTTL(0))
}

func TestSMTPSender_DialerAndMessage(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", FromEmail: "no-reply@example.com", TLSMode: TLSSSL})
	assert.Equal(t, 587, s.Port)

	var got *mail.Dialer
	var msgs []*mail.Message
	s.dial = func(d *mail.Dialer, m ...*mail.Message) error {
		got, msgs = d, m
		return nil
	}
	require.NoError(t, s.Send("ada@example.com", "hi", "<b>x</b>", "x"))
	require.NotNil(t, got)
	assert.True(t, got.SSL)
	assert.Equal(t, "smtp.example.com", got.TLSConfig.ServerName)
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"ada@example.com"}, msgs[0].GetHeader("To"))
}

func TestSMTPSender_EmptyRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "h"})
	assert.ErrorIs(t, s.Send("", "s", "", "t"), ErrNoRecipient)
}

func TestSMTPSender_DialError(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "h", TLSMode: TLSNone})
	s.dial = func(*mail.Dialer, ...*mail.Message) error { return errors.New("refused") }
	assert.ErrorContains(t, s.Send("a@b.com", "s", "", "t"), "smtp send: refused")
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := LogSender{Log: zap.New(core), EchoBody: true}
	require.NoError(t, s.Send("a@b.com", "subj", "", "link: http://x"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "link: http://x", entries[0].ContextMap()["body"])
}

func TestValidTLSMode(t *testing.T) {
	for _, m := range []string{"", "auto", "starttls", "ssl", "none"} {
		assert.True(t, ValidTLSMode(m), m)
	}
	assert.False(t, ValidTLSMode("tls13"))
}
