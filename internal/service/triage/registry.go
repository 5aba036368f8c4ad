package triage

import (
	"time"

	"github.com/jwalitptl/clinic-triage/internal/model"
)

// Registry owns the active queue, the append-only history log and the id
// counter. It is not safe for concurrent use; the Dispatcher serializes access.
type Registry struct {
	queue   []model.Patient
	history []model.Patient
	nextID  int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterOrUpdate updates the queued patient with the same CPF in place, or
// appends a new patient, reorders the queue and records a history snapshot.
// Input must already be validated. The bool reports whether a patient was
// created.
func (r *Registry) RegisterOrUpdate(in model.PatientInput, now time.Time) (model.Patient, bool) {
	if i := r.indexOf(in.CPF); i >= 0 {
		p := &r.queue[i]
		p.Name = in.Name
		p.Email = in.Email
		p.BirthDate = in.BirthDate
		p.Symptoms = in.Symptoms
		p.Severity = model.Severity(in.Symptoms)
		p.Age = model.AgeAt(in.BirthDate, now)
		return *p, false
	}

	p := model.Patient{
		ID:        r.nextID,
		Name:      in.Name,
		CPF:       in.CPF,
		Email:     in.Email,
		BirthDate: in.BirthDate,
		Age:       model.AgeAt(in.BirthDate, now),
		Symptoms:  in.Symptoms,
		Severity:  model.Severity(in.Symptoms),
	}
	r.nextID++

	r.queue = append(r.queue, p)
	Prioritize(r.queue)
	r.history = append(r.history, p)
	return p, true
}

// Remove deletes the queued patient with the given CPF.
func (r *Registry) Remove(cpf string) (model.Patient, bool) {
	i := r.indexOf(cpf)
	if i < 0 {
		return model.Patient{}, false
	}
	removed := r.queue[i]
	r.queue = append(r.queue[:i], r.queue[i+1:]...)
	return removed, true
}

func (r *Registry) indexOf(cpf string) int {
	for i := range r.queue {
		if r.queue[i].CPF == cpf {
			return i
		}
	}
	return -1
}

func (r *Registry) head() (model.Patient, bool) {
	if len(r.queue) == 0 {
		return model.Patient{}, false
	}
	return r.queue[0], true
}

func (r *Registry) popHead() (model.Patient, bool) {
	if len(r.queue) == 0 {
		return model.Patient{}, false
	}
	p := r.queue[0]
	r.queue = r.queue[1:]
	return p, true
}

// Queue returns a copy of the active queue in treatment order.
func (r *Registry) Queue() []model.Patient {
	out := make([]model.Patient, len(r.queue))
	copy(out, r.queue)
	return out
}

// History returns a copy of the history log in registration order.
func (r *Registry) History() []model.Patient {
	out := make([]model.Patient, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Registry) QueueLen() int {
	return len(r.queue)
}

func (r *Registry) HistoryLen() int {
	return len(r.history)
}
