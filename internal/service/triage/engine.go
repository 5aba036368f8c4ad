package triage

import (
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-triage/internal/model"
	apperrors "github.com/jwalitptl/clinic-triage/pkg/errors"
	"github.com/jwalitptl/clinic-triage/pkg/validator"
)

// DefaultBoardSlots is the number of queue entries shown on the board.
const DefaultBoardSlots = 5

// Engine is the complete triage state: registry, scheduler and name index.
// It is not safe for concurrent use.
type Engine struct {
	registry   *Registry
	scheduler  *Scheduler
	index      NameIndex
	clock      func() time.Time
	boardSlots int
}

type EngineOption func(*Engine)

// WithClock overrides the time source used for age computation.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

func WithBoardSlots(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.boardSlots = n
		}
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		registry:   NewRegistry(),
		scheduler:  NewScheduler(),
		clock:      time.Now,
		boardSlots: DefaultBoardSlots,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterOrUpdate validates in and hands it to the registry. Invalid input
// leaves the engine untouched.
func (e *Engine) RegisterOrUpdate(in model.PatientInput) (model.Patient, bool, error) {
	if err := validateInput(in); err != nil {
		return model.Patient{}, false, err
	}
	p, created := e.registry.RegisterOrUpdate(in, e.clock())
	return p, created, nil
}

func validateInput(in model.PatientInput) error {
	switch {
	case strings.TrimSpace(in.CPF) == "":
		return apperrors.Validation("cpf is required")
	case !validator.IsCPF(in.CPF):
		return apperrors.Validation("cpf must match XXX.XXX.XXX-XX")
	case strings.TrimSpace(in.Name) == "":
		return apperrors.Validation("name is required")
	case in.Symptoms.IsEmpty():
		return apperrors.Validation("at least one symptom is required")
	}
	return nil
}

// Remove deletes a queued patient. The scheduler is not told, even when the
// removed patient is the one being treated.
func (e *Engine) Remove(cpf string) (model.Patient, error) {
	if strings.TrimSpace(cpf) == "" {
		return model.Patient{}, apperrors.Validation("cpf is required")
	}
	p, ok := e.registry.Remove(cpf)
	if !ok {
		return model.Patient{}, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (e *Engine) Tick() TickOutcome {
	return e.scheduler.Tick(e.registry)
}

// Search runs a binary search over a freshly rebuilt name index, or a linear
// scan of the queue.
func (e *Engine) Search(q model.SearchQuery) (model.Patient, error) {
	if q.Binary {
		if strings.TrimSpace(q.Name) == "" {
			return model.Patient{}, apperrors.Validation("name is required for binary search")
		}
		e.index.Rebuild(e.registry.queue)
		if p, ok := e.index.Find(q.Name); ok {
			return p, nil
		}
		return model.Patient{}, apperrors.NotFound("patient", nil)
	}

	if q.CPF == "" && q.Name == "" {
		return model.Patient{}, apperrors.Validation("cpf or name is required")
	}
	if p, ok := LinearSearch(e.registry.queue, q.CPF, q.Name); ok {
		return p, nil
	}
	return model.Patient{}, apperrors.NotFound("patient", nil)
}

// Board returns the waiting-room display.
func (e *Engine) Board() model.QueueBoard {
	board := model.QueueBoard{
		Slots:       make([]string, e.boardSlots),
		State:       e.scheduler.State(),
		Progress:    e.scheduler.Progress(),
		QueueLength: e.registry.QueueLen(),
	}
	for i := range board.Slots {
		board.Slots[i] = model.WaitingPlaceholder
		if i < len(e.registry.queue) {
			board.Slots[i] = e.registry.queue[i].CPF
		}
	}
	if called, ok := e.scheduler.Called(); ok {
		board.Called = called.CPF + " " + strconv.Itoa(called.ID)
	}
	return board
}

func (e *Engine) Queue() []model.Patient {
	return e.registry.Queue()
}

func (e *Engine) History() []model.Patient {
	return e.registry.History()
}

func (e *Engine) QueueLen() int {
	return e.registry.QueueLen()
}

func (e *Engine) HistoryLen() int {
	return e.registry.HistoryLen()
}

func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

// Index exposes the last rebuilt name index.
func (e *Engine) Index() *NameIndex {
	return &e.index
}
