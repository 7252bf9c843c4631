package service

import (
	"compliance_checker/internal/domain"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

var ErrServiceClosed = errors.New("notification service closed")

type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationSMS   NotificationType = "sms"
)

type NotificationService struct {
	emailService EmailService
	smsService   SMSService
	messageQueue chan NotificationMessage
	workers      int
	shutdownChan chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
	logger       *slog.Logger
}

type NotificationMessage struct {
	Type      NotificationType
	Recipient string
	Subject   string
	Message   string
	Metadata  map[string]string
	CreatedAt time.Time
}

type EmailService interface {
	SendEmail(to, subject, body string) error
}

type SMSService interface {
	SendSMS(to, message string) error
}

func NewNotificationService(
	emailService EmailService,
	smsService SMSService,
	workers int,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}

	service := &NotificationService{
		emailService: emailService,
		smsService:   smsService,
		messageQueue: make(chan NotificationMessage, 1000),
		workers:      workers,
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}

	service.startWorkers()

	return service
}

// SendOTP queues a one-time code for delivery over the channel matching method.
func (s *NotificationService) SendOTP(ctx context.Context, method domain.ContactMethod, destination, code string) error {
	notification := NotificationMessage{
		Recipient: destination,
		Message:   fmt.Sprintf("Your Compliance Checker verification code is %s. It expires in a few minutes.", code),
		Metadata: map[string]string{
			"purpose": "otp",
		},
		CreatedAt: time.Now(),
	}

	switch method {
	case domain.ContactEmail:
		notification.Type = NotificationEmail
		notification.Subject = "Your verification code"
	case domain.ContactPhone:
		notification.Type = NotificationSMS
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidContact, method)
	}

	select {
	case <-s.shutdownChan:
		return ErrServiceClosed
	default:
	}

	select {
	case s.messageQueue <- notification:
		s.logger.InfoContext(ctx, "Notification queued",
			slog.String("type", string(notification.Type)),
			slog.String("recipient", MaskDestination(destination)))
		return nil
	case <-s.shutdownChan:
		return ErrServiceClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *NotificationService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *NotificationService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("Notification worker started", slog.Int("worker_id", id))

	for {
		select {
		case msg := <-s.messageQueue:
			s.processNotification(msg, id)
		case <-s.shutdownChan:
			s.drain(id)
			s.logger.Debug("Notification worker stopping", slog.Int("worker_id", id))
			return
		}
	}
}

// drain delivers whatever is still queued once shutdown has begun.
func (s *NotificationService) drain(workerID int) {
	for {
		select {
		case msg := <-s.messageQueue:
			s.processNotification(msg, workerID)
		default:
			return
		}
	}
}

func (s *NotificationService) processNotification(msg NotificationMessage, workerID int) {
	startTime := time.Now()
	var err error

	switch msg.Type {
	case NotificationEmail:
		err = s.emailService.SendEmail(msg.Recipient, msg.Subject, msg.Message)
	case NotificationSMS:
		err = s.smsService.SendSMS(msg.Recipient, msg.Message)
	default:
		err = fmt.Errorf("unknown notification type: %s", msg.Type)
	}

	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Failed to send notification",
			slog.String("type", string(msg.Type)),
			slog.String("recipient", MaskDestination(msg.Recipient)),
			slog.String("error", err.Error()),
			slog.Int("worker_id", workerID),
			slog.Duration("duration", duration))
	} else {
		s.logger.Info("Notification sent successfully",
			slog.String("type", string(msg.Type)),
			slog.String("recipient", MaskDestination(msg.Recipient)),
			slog.Int("worker_id", workerID),
			slog.Duration("duration", duration))
	}
}

func (s *NotificationService) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.shutdownChan) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MaskDestination hides most of an email local part or phone number for logs.
func MaskDestination(destination string) string {
	if local, host, ok := strings.Cut(destination, "@"); ok {
		if len(local) <= 1 {
			return "*@" + host
		}
		return local[:1] + strings.Repeat("*", len(local)-1) + "@" + host
	}
	if len(destination) <= 4 {
		return strings.Repeat("*", len(destination))
	}
	return strings.Repeat("*", len(destination)-4) + destination[len(destination)-4:]
}
