package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-triage/internal/model"
	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/metrics"
)

type fakeMailer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func enabledConfig() Config {
	return Config{Enabled: true, From: "triage@clinic.example"}
}

func eventPayload(t *testing.T, eventType model.EventType, email string) []byte {
	t.Helper()
	p := model.Patient{ID: 4, Name: "Ana", CPF: "111.111.111-11", Email: email, Severity: 4}
	payload, err := json.Marshal(model.NewTriageEvent(eventType, p, time.Now()))
	require.NoError(t, err)
	return payload
}

func TestService_HandleEvent_SendsOnTreatmentStarted(t *testing.T) {
	mailer := &fakeMailer{}
	m := metrics.New("notification_test")
	svc := NewService(enabledConfig(), mailer, logger.Nop(), m)

	require.NoError(t, svc.HandleEvent(context.Background(), eventPayload(t, model.EventTreatmentStarted, "ana@example.com")))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, []string{"triage@clinic.example"}, msg.GetHeader("From"))
	assert.Equal(t, []string{`"Ana" <ana@example.com>`}, msg.GetHeader("To"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Notifications.WithLabelValues(statusSent)))
	assert.Contains(t, calledBody(model.TriageEvent{Name: "Ana", CPF: "111.111.111-11", PatientID: 4}), "111.111.111-11 4")
}

func TestService_HandleEvent_IgnoresOtherEvents(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(enabledConfig(), mailer, logger.Nop(), metrics.New("notification_test"))

	for _, eventType := range []model.EventType{
		model.EventPatientRegistered,
		model.EventPatientUpdated,
		model.EventPatientRemoved,
		model.EventTreatmentCompleted,
	} {
		require.NoError(t, svc.HandleEvent(context.Background(), eventPayload(t, eventType, "ana@example.com")))
	}
	assert.Empty(t, mailer.sent)
}

func TestService_NotifyCalled_Skips(t *testing.T) {
	mailer := &fakeMailer{}
	m := metrics.New("notification_test")

	disabled := NewService(Config{}, mailer, logger.Nop(), m)
	require.NoError(t, disabled.HandleEvent(context.Background(), eventPayload(t, model.EventTreatmentStarted, "ana@example.com")))

	noEmail := NewService(enabledConfig(), mailer, logger.Nop(), m)
	require.NoError(t, noEmail.HandleEvent(context.Background(), eventPayload(t, model.EventTreatmentStarted, "")))

	assert.Empty(t, mailer.sent)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Notifications.WithLabelValues(statusSkipped)))
}

func TestService_NotifyCalled_MailerError(t *testing.T) {
	m := metrics.New("notification_test")
	svc := NewService(enabledConfig(), &fakeMailer{err: errors.New("smtp down")}, logger.Nop(), m)

	err := svc.HandleEvent(context.Background(), eventPayload(t, model.EventTreatmentStarted, "ana@example.com"))
	assert.ErrorContains(t, err, "smtp down")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Notifications.WithLabelValues(statusFailed)))
}

func TestService_HandleEvent_BadPayload(t *testing.T) {
	svc := NewService(enabledConfig(), &fakeMailer{}, logger.Nop(), metrics.New("notification_test"))
	assert.Error(t, svc.HandleEvent(context.Background(), []byte("{not json")))
}
