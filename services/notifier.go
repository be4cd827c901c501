package services

import (
	"fmt"
	"net/smtp"
	"sync"

	"github.com/gabbymorgan/drivefair.api/config"
)

// Email is an outbound email message
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// EmailSender delivers emails fire-and-forget. Implementations must never
// block the calling operation's result on delivery.
type EmailSender interface {
	Send(email Email) error
}

// PushData is the structured payload carried by a push notification
type PushData map[string]string

// PushResult reports per-delivery outcomes
type PushResult struct {
	SuccessCount int
}

// PushNotifier delivers push notifications to a driver's devices
type PushNotifier interface {
	Push(driverID uint, title, body string, data PushData) (*PushResult, error)
}

var (
	emailSenderInstance  EmailSender
	pushNotifierInstance PushNotifier
)

// InitNotifiers initializes the production email sender and push notifier
func InitNotifiers(hub *PushHub) (EmailSender, PushNotifier) {
	emailSenderInstance = &SMTPEmailSender{}
	pushNotifierInstance = &HubPushNotifier{hub: hub}
	return emailSenderInstance, pushNotifierInstance
}

// GetEmailSender returns the email sender instance
func GetEmailSender() EmailSender {
	return emailSenderInstance
}

// SetEmailSender sets the email sender instance (primarily for testing)
func SetEmailSender(sender EmailSender) {
	emailSenderInstance = sender
}

// GetPushNotifier returns the push notifier instance
func GetPushNotifier() PushNotifier {
	return pushNotifierInstance
}

// SetPushNotifier sets the push notifier instance (primarily for testing)
func SetPushNotifier(notifier PushNotifier) {
	pushNotifierInstance = notifier
}

// SMTPEmailSender sends mail through the configured SMTP relay. Outside
// production it is a no-op, matching how staging environments run without
// mail credentials.
type SMTPEmailSender struct{}

// Send delivers one email
func (s *SMTPEmailSender) Send(email Email) error {
	cfg := config.GetConfig()
	if !cfg.IsProduction() {
		return nil
	}
	body := email.Text
	contentType := "text/plain"
	if email.HTML != "" {
		body = email.HTML
		contentType = "text/html"
	}
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: %s; charset=\"UTF-8\"\r\n\r\n%s",
		cfg.EmailUser, email.To, email.Subject, contentType, body,
	)
	auth := smtp.PlainAuth("", cfg.EmailUser, cfg.EmailPassword, cfg.EmailHost)
	return smtp.SendMail(cfg.EmailHost+":587", auth, cfg.EmailUser, []string{email.To}, []byte(msg))
}

// MockEmailSender records sent emails for testing
type MockEmailSender struct {
	mu     sync.Mutex
	Emails []Email
}

// NewMockEmailSender creates a new mock email sender
func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

// SetAsMockForTesting sets this mock as the global email sender
func (m *MockEmailSender) SetAsMockForTesting() {
	SetEmailSender(m)
}

// Send records the email
func (m *MockEmailSender) Send(email Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emails = append(m.Emails, email)
	return nil
}

// SentTo returns the emails sent to an address
func (m *MockEmailSender) SentTo(address string) []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sent []Email
	for _, email := range m.Emails {
		if email.To == address {
			sent = append(sent, email)
		}
	}
	return sent
}

// MockPush is one push notification recorded by the mock notifier
type MockPush struct {
	DriverID uint
	Title    string
	Body     string
	Data     PushData
}

// MockPushNotifier records push notifications for testing, with optional
// per-driver failures
type MockPushNotifier struct {
	mu     sync.Mutex
	Pushes []MockPush

	// Drivers whose pushes should fail
	FailFor map[uint]error
}

// NewMockPushNotifier creates a new mock push notifier
func NewMockPushNotifier() *MockPushNotifier {
	return &MockPushNotifier{FailFor: make(map[uint]error)}
}

// SetAsMockForTesting sets this mock as the global push notifier
func (m *MockPushNotifier) SetAsMockForTesting() {
	SetPushNotifier(m)
}

// Push records the notification
func (m *MockPushNotifier) Push(driverID uint, title, body string, data PushData) (*PushResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[driverID]; ok {
		return nil, err
	}
	m.Pushes = append(m.Pushes, MockPush{DriverID: driverID, Title: title, Body: body, Data: data})
	return &PushResult{SuccessCount: 1}, nil
}

// PushesTo returns the notifications sent to a driver
func (m *MockPushNotifier) PushesTo(driverID uint) []MockPush {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pushes []MockPush
	for _, push := range m.Pushes {
		if push.DriverID == driverID {
			pushes = append(pushes, push)
		}
	}
	return pushes
}
