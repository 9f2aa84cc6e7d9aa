package mailer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"smartstudy_backend/internals/configs"
)

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewFromEnv: SendGrid kalau SENDGRID_API_KEY ada, selain itu console.
func NewFromEnv() Mailer {
	from := configs.GetEnv("MAIL_FROM", "no-reply@smartstudy.local")
	prefix := "[" + configs.GetEnv("APP_NAME", "SmartStudy") + "] "
	if key := strings.TrimSpace(configs.GetEnv("SENDGRID_API_KEY")); key != "" {
		log.Println("[MAIL] using sendgrid")
		return &SendgridMailer{key: key, from: sgmail.NewEmail("SmartStudy", from), subjPrefix: prefix}
	}
	log.Println("[MAIL] SENDGRID_API_KEY not set, using console mailer")
	return &ConsoleMailer{From: from, SubjPrefix: prefix}
}

/* ---------------- SendGrid ---------------- */

type SendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

func (m *SendgridMailer) Send(_ context.Context, msg Message) error {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	mail := sgmail.NewV3Mail()
	mail.SetFrom(m.from)
	mail.AddPersonalizations(p)
	mail.AddContent(sgmail.NewContent("text/plain", msg.Text))

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(mail)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d body %s", res.StatusCode, res.Body)
	}
	return nil
}

/* ---------------- Console ---------------- */

type ConsoleMailer struct {
	From       string
	SubjPrefix string
	Quiet      bool

	mu   sync.Mutex
	Sent []Message
}

func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	if !m.Quiet {
		log.Printf("[MAIL] From: %s To: %s <%s> Subject: %s\n%s", m.From, msg.ToName, msg.ToEmail, m.SubjPrefix+msg.Subject, msg.Text)
	}
	return nil
}

func (m *ConsoleMailer) SentMessages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.Sent...)
}
