package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-triage/internal/model"
	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/metrics"
)

const (
	statusSent    = "sent"
	statusFailed  = "failed"
	statusSkipped = "skipped"
)

// Mailer sends composed messages. *gomail.Dialer satisfies it.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Service emails patients when they are called in for treatment.
type Service struct {
	config  Config
	mailer  Mailer
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewService uses an SMTP dialer built from config when mailer is nil.
func NewService(config Config, mailer Mailer, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	if mailer == nil {
		mailer = gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	}
	return &Service{
		config:  config,
		mailer:  mailer,
		logger:  logger,
		metrics: metrics,
	}
}

// HandleEvent decodes a triage event and notifies the patient if it is a
// treatment start. Other events are ignored.
func (s *Service) HandleEvent(ctx context.Context, payload []byte) error {
	var event model.TriageEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode triage event: %w", err)
	}
	if event.Type != model.EventTreatmentStarted {
		return nil
	}
	return s.NotifyCalled(ctx, event)
}

func (s *Service) NotifyCalled(ctx context.Context, event model.TriageEvent) error {
	if !s.config.Enabled || event.Email == "" {
		s.metrics.Notifications.WithLabelValues(statusSkipped).Inc()
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.config.From)
	msg.SetAddressHeader("To", event.Email, event.Name)
	msg.SetHeader("Subject", "You are being called for treatment")
	msg.SetBody("text/plain", calledBody(event))

	if err := s.mailer.DialAndSend(msg); err != nil {
		s.metrics.Notifications.WithLabelValues(statusFailed).Inc()
		return fmt.Errorf("failed to send call notification: %w", err)
	}

	s.metrics.Notifications.WithLabelValues(statusSent).Inc()
	s.logger.Info("Call notification sent", "patient_id", event.PatientID)
	return nil
}

func calledBody(event model.TriageEvent) string {
	return fmt.Sprintf("Hello %s,\n\nPlease proceed to the treatment room. Your call number is %s.\n",
		event.Name, event.CPF+" "+strconv.Itoa(event.PatientID))
}
