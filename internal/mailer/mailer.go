package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

var (
	ErrNotConfigured          = errors.New("email service is not configured")
	ErrPlaceholderCredentials = errors.New("email credentials are still using placeholder values")
	ErrMissingFields          = errors.New("please provide name, email, and message")
	ErrInvalidContact         = errors.New("name and email must be a single line")
)

const (
	placeholderUser = "your-email@gmail.com"
	placeholderPass = "your-app-password-here"
)

// Contact заявка из формы обратной связи
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Validate имя и email уходят в заголовки письма, переводы строк в них запрещены
func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Message) == "" {
		return ErrMissingFields
	}
	if strings.ContainsAny(c.Name, "\r\n") || strings.ContainsAny(c.Email, "\r\n") || strings.ContainsAny(c.Phone, "\r\n") {
		return ErrInvalidContact
	}
	return nil
}

// Text текстовое тело письма
func (c Contact) Text(receivedAt time.Time) string {
	var b strings.Builder
	b.WriteString("New Contact Form Submission\n\n")
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	fmt.Fprintf(&b, "Email: %s\n", c.Email)
	if c.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n\n", c.Message)
	fmt.Fprintf(&b, "Received on: %s\n", receivedAt.Format(time.RFC1123))
	return b.String()
}

// Sender отправляет заявку в почтовый ящик сайта
type Sender interface {
	Send(ctx context.Context, contact Contact) error
}

type deliverFunc func(ctx context.Context, msg *mail.Msg) error

// SMTPSender шлёт заявки письмом самому себе: from и to совпадают
type SMTPSender struct {
	host    string
	port    int
	user    string
	pass    string
	deliver deliverFunc
}

func NewSMTPSender(host string, port int, user, pass string) *SMTPSender {
	s := &SMTPSender{
		host: host,
		port: port,
		user: user,
		pass: pass,
	}
	s.deliver = s.dialAndSend
	return s
}

// Configured проверяет, что учётные данные заданы и не остались заглушками
func (s *SMTPSender) Configured() error {
	if s.user == "" || s.pass == "" {
		return ErrNotConfigured
	}
	if s.user == placeholderUser || s.pass == placeholderPass {
		return ErrPlaceholderCredentials
	}
	return nil
}

func (s *SMTPSender) Send(ctx context.Context, contact Contact) error {
	if err := s.Configured(); err != nil {
		return err
	}
	if err := contact.Validate(); err != nil {
		return err
	}

	msg, err := s.compose(contact, time.Now())
	if err != nil {
		return err
	}

	if err := s.deliver(ctx, msg); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}

func (s *SMTPSender) compose(contact Contact, receivedAt time.Time) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.user); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(s.user); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if err := msg.ReplyTo(contact.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}
	msg.Subject("New Contact Form Submission from " + contact.Name)
	msg.SetBodyString(mail.TypeTextPlain, contact.Text(receivedAt))
	return msg, nil
}

// dialAndSend открывает SMTP-сессию со STARTTLS на каждую заявку
func (s *SMTPSender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.user),
		mail.WithPassword(s.pass),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
