package triage

import "github.com/jwalitptl/clinic-triage/internal/model"

// Transition is the state change caused by one tick.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionStarted
	TransitionProgressed
	TransitionCompleted
)

func (t Transition) String() string {
	switch t {
	case TransitionStarted:
		return "started"
	case TransitionProgressed:
		return "progressed"
	case TransitionCompleted:
		return "completed"
	default:
		return "none"
	}
}

// TickOutcome describes what a tick did. On TransitionStarted, Patient is the
// called patient. On TransitionCompleted, Patient is the entry popped from the
// queue head, if any (Popped).
type TickOutcome struct {
	Transition Transition
	Patient    model.Patient
	Popped     bool
	Progress   int
}

// Scheduler treats one patient at a time, counting down the head's severity
// in ticks.
//
// The treated patient is captured when treatment starts and the queue is not
// consulted again until the countdown ends. If the head is removed while
// treating, completion pops whatever is at the head at that moment.
type Scheduler struct {
	state     model.TreatmentState
	called    model.Patient
	total     int
	remaining int
	progress  int
}

func NewScheduler() *Scheduler {
	return &Scheduler{state: model.TreatmentStateIdle}
}

// Tick advances the state machine by one step.
func (s *Scheduler) Tick(r *Registry) TickOutcome {
	if s.state != model.TreatmentStateTreating {
		head, ok := r.head()
		if !ok {
			return TickOutcome{Transition: TransitionNone}
		}
		s.state = model.TreatmentStateTreating
		s.called = head
		s.total = head.Severity
		s.remaining = s.total + 1
		s.progress = 0
		return TickOutcome{Transition: TransitionStarted, Patient: head}
	}

	s.remaining--
	if s.total > 0 {
		s.progress = (s.total - s.remaining) * 100 / s.total
	}
	if s.remaining > 0 {
		return TickOutcome{Transition: TransitionProgressed, Patient: s.called, Progress: s.progress}
	}

	outcome := TickOutcome{Transition: TransitionCompleted, Progress: s.progress}
	outcome.Patient, outcome.Popped = r.popHead()

	s.state = model.TreatmentStateIdle
	s.called = model.Patient{}
	s.total, s.remaining, s.progress = 0, 0, 0
	return outcome
}

func (s *Scheduler) State() model.TreatmentState {
	return s.state
}

func (s *Scheduler) Progress() int {
	return s.progress
}

func (s *Scheduler) Remaining() int {
	return s.remaining
}

// Called returns the patient under treatment.
func (s *Scheduler) Called() (model.Patient, bool) {
	if s.state != model.TreatmentStateTreating {
		return model.Patient{}, false
	}
	return s.called, true
}
