package model

// WaitingPlaceholder fills empty board slots.
const WaitingPlaceholder = "Aguardando paciente"

type TreatmentState string

const (
	TreatmentStateIdle     TreatmentState = "idle"
	TreatmentStateTreating TreatmentState = "treating"
)

// QueueBoard is the waiting-room display: the head of the queue and the
// patient currently called in.
type QueueBoard struct {
	Slots       []string       `json:"slots"`
	Called      string         `json:"called,omitempty"`
	Progress    int            `json:"progress"`
	State       TreatmentState `json:"state"`
	QueueLength int            `json:"queue_length"`
}

// Report is a rendered listing of patients.
type Report struct {
	Text     string    `json:"report"`
	Count    int       `json:"count"`
	Patients []Patient `json:"patients,omitempty"`
}
