package service

import (
	"log/slog"
	"sync"
)

// LogEmailService stands in for a mail provider: it writes the message to the
// log at debug level so a developer can read the code.
type LogEmailService struct {
	Logger *slog.Logger
}

func (l *LogEmailService) SendEmail(to, subject, body string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Email delivered",
		slog.String("to", MaskDestination(to)),
		slog.String("subject", subject),
		slog.String("body", body))
	return nil
}

type LogSMSService struct {
	Logger *slog.Logger
}

func (l *LogSMSService) SendSMS(to, message string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("SMS delivered",
		slog.String("to", MaskDestination(to)),
		slog.String("message", message))
	return nil
}

type SentEmail struct {
	To      string
	Subject string
	Body    string
}

type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []SentEmail
	Err        error
}

func (m *MockEmailService) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.SentEmails = append(m.SentEmails, SentEmail{to, subject, body})
	return nil
}

func (m *MockEmailService) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.SentEmails...)
}

type SentSMS struct {
	To      string
	Message string
}

type MockSMSService struct {
	mu      sync.Mutex
	SentSMS []SentSMS
}

func (m *MockSMSService) SendSMS(to, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentSMS = append(m.SentSMS, SentSMS{to, message})
	return nil
}

func (m *MockSMSService) Sent() []SentSMS {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentSMS(nil), m.SentSMS...)
}
