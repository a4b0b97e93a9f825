package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendWelcomeEmail(toEmail, toName string) error
	SendInvoiceIssued(toEmail, toName string, n InvoiceNotice) error
	SendPaymentConfirmed(toEmail, toName string, n PaymentNotice) error
}

// InvoiceNotice describes a newly issued invoice
type InvoiceNotice struct {
	InvoiceNumber   string
	ApartmentNumber string
	Type            string
	Amount          decimal.Decimal
	DueDate         time.Time
	Description     string
}

// PaymentNotice describes a settled invoice
type PaymentNotice struct {
	InvoiceNumber   string
	TransactionCode string
	Amount          decimal.Decimal
	PaidAt          time.Time
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL for links in emails
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(to string, msg []byte) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) *EmailServiceImpl {
	s := &EmailServiceImpl{
		config: config,
		logger: logger,
	}
	s.send = s.deliver
	return s
}

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"vnd":  FormatVND,
	"date": func(t time.Time) string { return t.Format("02/01/2006") },
}).Parse(`
{{define "layout"}}<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #1f6f5c;">StayEase</h2>
<p>Xin chào {{.Name}},</p>
{{template "content" .}}
<p>Trân trọng,<br>Ban quản lý StayEase</p>
</div></body></html>{{end}}

{{define "welcome_content"}}<p>Tài khoản của bạn đã được tạo. Bạn có thể đăng nhập để xem hóa đơn và gửi yêu cầu dịch vụ.</p>{{end}}

{{define "invoice_content"}}<p>Ban quản lý vừa phát hành hóa đơn mới cho căn hộ {{.Invoice.ApartmentNumber}}.</p>
<table cellpadding="6">
<tr><td>Số hóa đơn</td><td><strong>{{.Invoice.InvoiceNumber}}</strong></td></tr>
<tr><td>Loại</td><td>{{.Invoice.Type}}</td></tr>
<tr><td>Số tiền</td><td><strong>{{vnd .Invoice.Amount}}</strong></td></tr>
<tr><td>Hạn thanh toán</td><td>{{date .Invoice.DueDate}}</td></tr>
{{if .Invoice.Description}}<tr><td>Ghi chú</td><td>{{.Invoice.Description}}</td></tr>{{end}}
</table>
<p><a href="{{.Link}}">Xem và thanh toán hóa đơn</a></p>{{end}}

{{define "payment_content"}}<p>Hóa đơn <strong>{{.Payment.InvoiceNumber}}</strong> đã được thanh toán.</p>
<table cellpadding="6">
<tr><td>Mã giao dịch</td><td>{{.Payment.TransactionCode}}</td></tr>
<tr><td>Số tiền</td><td><strong>{{vnd .Payment.Amount}}</strong></td></tr>
<tr><td>Thời gian</td><td>{{date .Payment.PaidAt}}</td></tr>
</table>{{end}}
`))

type mailData struct {
	Name    string
	Link    string
	Invoice InvoiceNotice
	Payment PaymentNotice
}

func render(content string, data mailData) (string, error) {
	t, err := templates.Clone()
	if err != nil {
		return "", err
	}
	if _, err := t.New("content").Parse(`{{template "` + content + `" .}}`); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

// FormatVND renders 5000000 as "5.000.000 ₫"
func FormatVND(d decimal.Decimal) string {
	s := d.Round(0).Abs().String()
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + " ₫"
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

// SendWelcomeEmail greets a newly created account
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	body, err := render("welcome_content", mailData{Name: toName})
	if err != nil {
		return err
	}
	return s.sendHTMLEmail(toEmail, "Chào mừng đến với StayEase", body)
}

// SendInvoiceIssued notifies a resident about a new invoice
func (s *EmailServiceImpl) SendInvoiceIssued(toEmail, toName string, n InvoiceNotice) error {
	body, err := render("invoice_content", mailData{
		Name:    toName,
		Link:    strings.TrimRight(s.config.BaseURL, "/") + "/invoices",
		Invoice: n,
	})
	if err != nil {
		return err
	}
	return s.sendHTMLEmail(toEmail, fmt.Sprintf("Hóa đơn mới %s", n.InvoiceNumber), body)
}

// SendPaymentConfirmed sends a receipt after settlement
func (s *EmailServiceImpl) SendPaymentConfirmed(toEmail, toName string, n PaymentNotice) error {
	body, err := render("payment_content", mailData{Name: toName, Payment: n})
	if err != nil {
		return err
	}
	return s.sendHTMLEmail(toEmail, fmt.Sprintf("Xác nhận thanh toán %s", n.InvoiceNumber), body)
}

// sendHTMLEmail logs instead of sending when SMTP is not configured
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	if s.config.Host == "" || s.config.Username == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP not configured - email not sent")
		return nil
	}

	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.FromEmail)},
		{"To", toEmail},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := s.send(toEmail, []byte(msg.String())); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send email")
		return err
	}
	s.logger.Info().Str("toEmail", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}

func (s *EmailServiceImpl) deliver(toEmail string, message []byte) error {
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}
