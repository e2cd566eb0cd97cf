package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/smarttech/storefront/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.New("email").Funcs(template.FuncMap{
	"orDefault": orDefault,
}).ParseFS(templateFS, "templates/*.html"))

// DefaultSMTPTimeout bounds one SMTP submission when no timeout is configured.
const DefaultSMTPTimeout = 60 * time.Second

// SendFunc submits an already rendered message.
type SendFunc func(ctx context.Context, from, to string, msg []byte) error

// SMTPMailer renders the order templates and submits them over SMTP with STARTTLS.
type SMTPMailer struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	recipient string
	timeout   time.Duration
	send      SendFunc
}

// MailerOption customises an SMTPMailer built by NewSMTPMailer.
type MailerOption func(*SMTPMailer)

// WithSendFunc replaces the SMTP submission.
func WithSendFunc(fn SendFunc) MailerOption {
	return func(m *SMTPMailer) { m.send = fn }
}

// WithTimeout bounds dialing plus the whole SMTP conversation for one message.
// Non-positive values keep DefaultSMTPTimeout.
func WithTimeout(d time.Duration) MailerOption {
	return func(m *SMTPMailer) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewSMTPMailer creates a mailer that submits through host:port with STARTTLS.
//
// Parameters:
// - host: the SMTP server. An empty host disables email.
// - port: the submission port, usually 587.
// - email, password: the account used for PLAIN auth and as the sender.
// - recipient: the shop owner address that receives admin notifications.
// - opts: optional MailerOption values.
//
// Returns:
// - *SMTPMailer: the mailer, or nil when no host is configured.
func NewSMTPMailer(host string, port int, email, password, recipient string, opts ...MailerOption) *SMTPMailer {
	if host == "" {
		return nil
	}
	m := &SMTPMailer{
		host:      host,
		port:      port,
		username:  email,
		password:  password,
		from:      email,
		recipient: recipient,
		timeout:   DefaultSMTPTimeout,
	}
	m.send = m.submit
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type emailData struct {
	Order     model.OrderSnapshot
	Customer  model.CustomerSnapshot
	Total     string
	OrderDate string
}

func newEmailData(p model.NotificationPayload) emailData {
	return emailData{
		Order:     p.Order,
		Customer:  p.Customer,
		Total:     p.Order.TotalPrice.StringFixed(2),
		OrderDate: p.Order.OrderDate.Format(orderDateLayout),
	}
}

// SendAdminNotification emails the new order to the shop owner.
//
// Parameters:
// - ctx: bounds the submission together with the mailer timeout.
// - p: the order and customer snapshot.
//
// Returns:
// - error: rendering or SMTP failure.
func (m *SMTPMailer) SendAdminNotification(ctx context.Context, p model.NotificationPayload) error {
	subject := fmt.Sprintf("New Order #%d - SmartTech Interactive Board", p.Order.ID)
	return m.sendTemplate(ctx, m.recipient, subject, "admin_order_notification.html", p)
}

// SendCustomerConfirmation emails the order confirmation to the customer.
// It fails without contacting the server when the customer has no email.
func (m *SMTPMailer) SendCustomerConfirmation(ctx context.Context, p model.NotificationPayload) error {
	subject := fmt.Sprintf("Order Confirmation #%d - SmartTech", p.Order.ID)
	return m.sendTemplate(ctx, p.Customer.Email, subject, "customer_order_confirmation.html", p)
}

func (m *SMTPMailer) sendTemplate(ctx context.Context, to, subject, name string, p model.NotificationPayload) error {
	if to == "" {
		return fmt.Errorf("no recipient for %q", subject)
	}
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, name, newEmailData(p)); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return m.send(ctx, m.from, to, buildMessage(m.from, to, subject, body.Bytes()))
}

func buildMessage(from, to, subject string, htmlBody []byte) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: <%s@smarttech>\r\n", uuid.NewString())
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(htmlBody)
	return msg.Bytes()
}

// submit dials the server, upgrades with STARTTLS and authenticates. The
// connection never outlives the mailer timeout or ctx, whichever ends first.
func (m *SMTPMailer) submit(ctx context.Context, from, to string, msg []byte) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	d := net.Dialer{Timeout: m.timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	// a cancelled ctx unblocks any read still waiting on the server
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if m.username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
