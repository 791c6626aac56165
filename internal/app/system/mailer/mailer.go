// Package mailer sends the owner notifications for contact messages and
// reservation requests over SMTP.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrDisabled is returned by Send when no SMTP host is configured.
var ErrDisabled = errors.New("mail delivery is not configured")

// Sender delivers one email. Tests substitute a recording fake.
type Sender interface {
	Send(email Email) error
}

type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Mailer delivers through a single SMTP relay with optional PLAIN auth.
type Mailer struct {
	cfg  Config
	log  *zap.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

func New(cfg Config, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail, now: time.Now}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != ""
}

// Email is one outgoing message. HTMLBody is optional; when set the
// message carries both parts.
type Email struct {
	To       string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
}

func (m *Mailer) Send(email Email) error {
	logFields := []zap.Field{zap.String("to", email.To), zap.String("subject", email.Subject)}
	if !m.Enabled() {
		if m != nil {
			m.log.Info("mail disabled, message dropped", logFields...)
		}
		return ErrDisabled
	}

	msg, err := m.compose(email)
	if err != nil {
		return fmt.Errorf("compose email: %w", err)
	}

	var auth smtp.Auth
	if m.cfg.User != "" && m.cfg.Pass != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{email.To}, msg); err != nil {
		m.log.Error("send email failed", append(logFields, zap.Error(err))...)
		return fmt.Errorf("send email: %w", err)
	}
	m.log.Info("email sent", logFields...)
	return nil
}

// compose renders the RFC 5322 message. Non-ASCII subjects and names are
// Q-encoded.
func (m *Mailer) compose(email Email) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("From", (&mail.Address{Name: m.cfg.FromName, Address: m.cfg.From}).String())
	header("To", email.To)
	if email.ReplyTo != "" {
		header("Reply-To", email.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")

	if email.HTMLBody == "" {
		header("Content-Type", "text/plain; charset=UTF-8")
		buf.WriteString("\r\n")
		buf.WriteString(email.TextBody)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	header("Content-Type", mime.FormatMediaType("multipart/alternative", map[string]string{"boundary": mw.Boundary()}))
	buf.WriteString("\r\n")
	for _, part := range []struct{ ctype, body string }{
		{"text/plain; charset=UTF-8", email.TextBody},
		{"text/html; charset=UTF-8", email.HTMLBody},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.ctype}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
