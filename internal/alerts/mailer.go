// Package alerts delivers account email: the synchronous one-time-password
// message of the reset flow, and a queued welcome message on signup.
package alerts

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Config selects the delivery provider. With Provider "plunk" mail goes out
// over the Plunk HTTP API, otherwise over SMTP with TLS. RedisAddr enables
// the asynq queue; without it enqueued mail is sent inline.
type Config struct {
	Provider     string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	From         string
	ReplyTo      string

	PlunkAPIKey string
	PlunkFrom   string
	PlunkAPIURL string

	RedisAddr string
	AppURL    string
	AppName   string
}

type Mailer struct {
	cfg    Config
	client *asynq.Client
	server *asynq.Server
	log    *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Mailer {
	m := &Mailer{cfg: cfg, log: log}
	if cfg.RedisAddr != "" {
		m.client = asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	}
	return m
}

// SendOneTimePassword mails the reset token and blocks until the provider
// accepts the message. The caller reports the HTTP outcome from its result.
func (m *Mailer) SendOneTimePassword(ctx context.Context, to, token string) error {
	subject := fmt.Sprintf("%s Password Reset Request", m.cfg.AppName)
	body := fmt.Sprintf(
		"We received a password reset request for your %s account.\n\n"+
			"A one-time password has been generated for you which is good for "+
			"one sign-in only within the next hour:\n\n%s\n\n"+
			"Please sign in with this password. You will then be redirected to "+
			"a page where you can choose a new one.\n\n"+
			"If this password has already expired, you can request another.",
		m.cfg.AppName, token)

	return m.sendEmail(ctx, to, subject, body)
}

// EnqueueWelcome schedules the signup welcome email. Without a queue it is
// sent in the background so signup never waits on the provider.
func (m *Mailer) EnqueueWelcome(userID, email, name string) error {
	base := strings.TrimRight(m.cfg.AppURL, "/")
	subject := fmt.Sprintf("Welcome to %s, %s!", m.cfg.AppName, name)
	body := fmt.Sprintf("Hi %s, thanks for joining %s.\n\nGet started: %s",
		name, m.cfg.AppName, base)

	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	if m.client == nil {
		go func() {
			if err := m.sendEmail(context.Background(), env.To, env.Subject, env.Body); err != nil {
				m.log.Warn("welcome email send failed", zap.String("email", email), zap.Error(err))
			}
		}()
		return nil
	}

	payload := WelcomeEmailPayload{UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now()}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = m.client.Enqueue(asynq.NewTask(TaskWelcomeEmail, b), asynq.Queue("emails"))
	return err
}

// Run starts the asynq worker draining the email queue. It is a no-op when
// no queue is configured.
func (m *Mailer) Run() {
	if m.cfg.RedisAddr == "" {
		return
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, m.handleWelcomeEmail)

	m.server = asynq.NewServer(
		asynq.RedisClientOpt{Addr: m.cfg.RedisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"emails": 10},
		},
	)
	go func() {
		if err := m.server.Run(mux); err != nil {
			m.log.Error("mail worker stopped", zap.Error(err))
		}
	}()
}

// Close releases the client and stops the worker.
func (m *Mailer) Close() {
	if m.client != nil {
		_ = m.client.Close()
	}
	if m.server != nil {
		m.server.Shutdown()
	}
}

func (m *Mailer) handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	return m.sendEmail(ctx, p.Envelope.To, p.Envelope.Subject, p.Envelope.Body)
}

// sendEmail routes to the configured provider.
func (m *Mailer) sendEmail(ctx context.Context, to, subject, body string) error {
	if m.cfg.Provider == "plunk" || (m.cfg.PlunkAPIKey != "" && m.cfg.Provider == "") {
		return m.sendViaPlunk(ctx, to, subject, body)
	}
	return m.sendViaSMTP(to, subject, body)
}

// sendViaSMTP sends a plain text email over SMTP with TLS.
func (m *Mailer) sendViaSMTP(to, subject, body string) error {
	if m.cfg.SMTPHost == "" || m.cfg.SMTPPort == "" || m.cfg.From == "" {
		return fmt.Errorf("smtp not configured: set SMTP host, port, credentials and from address")
	}

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	msg := ""
	msg += fmt.Sprintf("From: %s\r\n", m.cfg.From)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	if m.cfg.ReplyTo != "" {
		msg += fmt.Sprintf("Reply-To: %s\r\n", m.cfg.ReplyTo)
	}
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/plain; charset=\"utf-8\"\r\n"
	msg += "\r\n" + body + "\r\n"

	tlsConfig := &tls.Config{ServerName: m.cfg.SMTPHost}
	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}
