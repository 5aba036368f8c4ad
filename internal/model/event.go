package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPatientRegistered  EventType = "patient.registered"
	EventPatientUpdated     EventType = "patient.updated"
	EventPatientRemoved     EventType = "patient.removed"
	EventTreatmentStarted   EventType = "treatment.started"
	EventTreatmentCompleted EventType = "treatment.completed"
)

// TriageEvent is published to the broker whenever the queue or the treatment
// slot changes.
type TriageEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	PatientID  int       `json:"patient_id"`
	CPF        string    `json:"cpf"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Severity   int       `json:"severity"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewTriageEvent(eventType EventType, p Patient, at time.Time) TriageEvent {
	return TriageEvent{
		ID:         uuid.New(),
		Type:       eventType,
		PatientID:  p.ID,
		CPF:        p.CPF,
		Name:       p.Name,
		Email:      p.Email,
		Severity:   p.Severity,
		OccurredAt: at,
	}
}

// Key partitions events per patient on brokers that support keys.
func (e TriageEvent) Key() string {
	return e.CPF
}
