package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

var contact = Contact{
	Name:    "Ravi",
	Email:   "ravi@example.com",
	Phone:   "+91 98765 43210",
	Message: "Is the Creta still available?",
}

func TestSMTPSender_Configured(t *testing.T) {
	assert.ErrorIs(t, NewSMTPSender("smtp.gmail.com", 587, "", "").Configured(), ErrNotConfigured)
	assert.ErrorIs(t, NewSMTPSender("smtp.gmail.com", 587, placeholderUser, "secret").Configured(), ErrPlaceholderCredentials)
	assert.ErrorIs(t, NewSMTPSender("smtp.gmail.com", 587, "shop@example.com", placeholderPass).Configured(), ErrPlaceholderCredentials)
	assert.NoError(t, NewSMTPSender("smtp.gmail.com", 587, "shop@example.com", "secret").Configured())
}

func capture(s *SMTPSender) *[]*mail.Msg {
	var sent []*mail.Msg
	s.deliver = func(_ context.Context, msg *mail.Msg) error {
		sent = append(sent, msg)
		return nil
	}
	return &sent
}

func render(t *testing.T, msg *mail.Msg) (headers, body string) {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	i := strings.Index(raw, "\r\n\r\n")
	require.Positive(t, i)
	return raw[:i+2], raw[i+4:]
}

func TestSMTPSender_Send(t *testing.T) {
	s := NewSMTPSender("smtp.gmail.com", 587, "shop@example.com", "secret")
	sent := capture(s)

	require.NoError(t, s.Send(context.Background(), contact))
	require.Len(t, *sent, 1)
	msg := (*sent)[0]

	assert.Equal(t, []string{"<shop@example.com>"}, msg.GetFromString())
	assert.Equal(t, []string{"<shop@example.com>"}, msg.GetToString())

	headers, body := render(t, msg)
	assert.Contains(t, headers, "Subject: New Contact Form Submission from Ravi\r\n")
	assert.Contains(t, headers, "Reply-To: <ravi@example.com>\r\n")
	assert.Contains(t, body, "Phone: +91 98765 43210")
	assert.Contains(t, body, "Is the Creta still available?")
}

func TestSMTPSender_RejectsMultilineName(t *testing.T) {
	s := NewSMTPSender("smtp.gmail.com", 587, "shop@example.com", "secret")
	sent := capture(s)

	c := contact
	c.Name = "Eve\r\nBcc: victim@evil.test\r\nX-Injected: yes"
	assert.ErrorIs(t, s.Send(context.Background(), c), ErrInvalidContact)

	c = contact
	c.Email = "eve@example.com\nBcc: victim@evil.test"
	assert.ErrorIs(t, s.Send(context.Background(), c), ErrInvalidContact)

	assert.Empty(t, *sent)
}

func TestSMTPSender_ComposeEncodesHeaders(t *testing.T) {
	s := NewSMTPSender("smtp.gmail.com", 587, "shop@example.com", "secret")

	c := contact
	c.Name = "Eve\r\nBcc: victim@evil.test"
	msg, err := s.compose(c, time.Now())
	require.NoError(t, err)
	headers, _ := render(t, msg)
	assert.NotContains(t, headers, "\r\nBcc:")

	c.Name = "Ünal"
	msg, err = s.compose(c, time.Now())
	require.NoError(t, err)
	headers, _ = render(t, msg)
	assert.Contains(t, headers, "=?UTF-8?q?")
	assert.NotContains(t, headers, "Ünal")
}

func TestSMTPSender_SendErrors(t *testing.T) {
	s := NewSMTPSender("smtp.gmail.com", 587, "shop@example.com", "secret")
	s.deliver = func(context.Context, *mail.Msg) error {
		return errors.New("535 auth failed")
	}

	err := s.Send(context.Background(), contact)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "send contact email"))

	assert.ErrorIs(t, s.Send(context.Background(), Contact{Name: "x"}), ErrMissingFields)

	c := contact
	c.Email = "not an address"
	assert.ErrorIs(t, s.Send(context.Background(), c), ErrInvalidContact)
}

func TestContact_TextWithoutPhone(t *testing.T) {
	c := contact
	c.Phone = ""
	assert.NotContains(t, c.Text(time.Now()), "Phone:")
}

type mockBot struct {
	mock.Mock
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func TestTelegramNotifier_Send(t *testing.T) {
	bot := &mockBot{}
	bot.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42 && strings.Contains(msg.Text, "Name: Ravi")
	})).Return(tgbotapi.Message{MessageID: 1}, nil).Once()

	n := NewTelegramNotifier(bot, 42)
	require.NoError(t, n.Send(context.Background(), contact))
	bot.AssertExpectations(t)
}

func TestTelegramNotifier_SendError(t *testing.T) {
	bot := &mockBot{}
	bot.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("chat not found")).Once()

	err := NewTelegramNotifier(bot, 42).Send(context.Background(), contact)
	assert.ErrorContains(t, err, "telegram notify")
}
