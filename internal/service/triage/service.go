package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-triage/internal/model"
	apperrors "github.com/jwalitptl/clinic-triage/pkg/errors"
	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/metrics"
)

// EventSink receives triage events. Enqueue must not block; it reports
// whether the event was accepted.
type EventSink interface {
	Enqueue(event model.TriageEvent) bool
}

type Config struct {
	TickInterval   time.Duration
	ReportCacheTTL time.Duration
	CacheCleanup   time.Duration
}

// Service is the concurrency-safe front of the triage engine. Every
// operation is executed by the dispatcher.
type Service struct {
	engine     *Engine
	dispatcher *Dispatcher
	sink       EventSink
	metrics    *metrics.Metrics
	logger     *logger.Logger
	reports    *cache.Cache
	now        func() time.Time
}

func NewService(engine *Engine, cfg Config, sink EventSink, m *metrics.Metrics, log *logger.Logger) *Service {
	if m == nil {
		m = metrics.New("triage")
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ReportCacheTTL <= 0 {
		cfg.ReportCacheTTL = 5 * time.Minute
	}
	if cfg.CacheCleanup <= 0 {
		cfg.CacheCleanup = 10 * time.Minute
	}

	s := &Service{
		engine:  engine,
		sink:    sink,
		metrics: m,
		logger:  log,
		reports: cache.New(cfg.ReportCacheTTL, cfg.CacheCleanup),
		now:     time.Now,
	}
	s.dispatcher = NewDispatcher(engine, cfg.TickInterval, s.onTick)
	return s
}

// Run drives the engine until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("triage engine started")
	s.dispatcher.Run(ctx)
	s.logger.Info("triage engine stopped")
}

// Ready reports whether the engine is accepting work.
func (s *Service) Ready(ctx context.Context) error {
	return s.dispatcher.Do(ctx, func(*Engine) {})
}

// Register adds a patient or updates the queued patient with the same CPF.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (model.Patient, bool, error) {
	in, err := toInput(req)
	if err != nil {
		s.metrics.ValidationFailures.WithLabelValues("register").Inc()
		return model.Patient{}, false, err
	}

	var (
		patient model.Patient
		created bool
		opErr   error
	)
	err = s.dispatcher.Do(ctx, func(e *Engine) {
		patient, created, opErr = e.RegisterOrUpdate(in)
		if opErr != nil {
			return
		}
		eventType := model.EventPatientUpdated
		if created {
			eventType = model.EventPatientRegistered
			s.metrics.PatientsRegistered.Inc()
		} else {
			s.metrics.PatientsUpdated.Inc()
		}
		s.observeSizes(e)
		s.emit(eventType, patient)
	})
	if err != nil {
		return model.Patient{}, false, err
	}
	if opErr != nil {
		s.metrics.ValidationFailures.WithLabelValues("register").Inc()
		return model.Patient{}, false, opErr
	}

	s.logger.Info("patient registered",
		"patient_id", patient.ID,
		"severity", patient.Severity,
		"created", created,
	)
	return patient, created, nil
}

func toInput(req *model.RegisterPatientRequest) (model.PatientInput, error) {
	if req == nil {
		return model.PatientInput{}, apperrors.Validation("request body is required")
	}
	birth, err := time.Parse(model.BirthDateLayout, req.BirthDate)
	if err != nil {
		return model.PatientInput{}, apperrors.Validation("birth_date must be formatted as YYYY-MM-DD")
	}
	symptoms, err := model.ParseSymptomSet(req.Symptoms)
	if err != nil {
		return model.PatientInput{}, apperrors.Validation(err.Error())
	}
	return model.PatientInput{
		Name:      req.Name,
		CPF:       req.CPF,
		Email:     req.Email,
		BirthDate: birth,
		Symptoms:  symptoms,
	}, nil
}

// Remove deletes the queued patient with cpf. History is not touched.
func (s *Service) Remove(ctx context.Context, cpf string) (model.Patient, error) {
	var (
		patient model.Patient
		opErr   error
	)
	err := s.dispatcher.Do(ctx, func(e *Engine) {
		patient, opErr = e.Remove(cpf)
		if opErr != nil {
			return
		}
		s.metrics.PatientsRemoved.Inc()
		s.observeSizes(e)
		s.emit(model.EventPatientRemoved, patient)
	})
	if err != nil {
		return model.Patient{}, err
	}
	if opErr != nil {
		if apperrors.IsValidation(opErr) {
			s.metrics.ValidationFailures.WithLabelValues("remove").Inc()
		}
		return model.Patient{}, opErr
	}

	s.logger.Info("patient removed", "patient_id", patient.ID)
	return patient, nil
}

func (s *Service) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	var (
		patient model.Patient
		opErr   error
	)
	err := s.dispatcher.Do(ctx, func(e *Engine) {
		patient, opErr = e.Search(q)
	})
	if err != nil {
		return model.SearchResult{}, err
	}

	switch {
	case opErr == nil:
		s.metrics.Searches.WithLabelValues(q.Mode(), "found").Inc()
	case apperrors.IsNotFound(opErr):
		s.metrics.Searches.WithLabelValues(q.Mode(), "not_found").Inc()
		return model.SearchResult{}, opErr
	default:
		s.metrics.Searches.WithLabelValues(q.Mode(), "invalid").Inc()
		s.metrics.ValidationFailures.WithLabelValues("search").Inc()
		return model.SearchResult{}, opErr
	}

	return model.SearchResult{
		Patient: patient,
		Report:  Render([]model.Patient{patient}),
		Mode:    q.Mode(),
	}, nil
}

func (s *Service) Board(ctx context.Context) (model.QueueBoard, error) {
	var board model.QueueBoard
	err := s.dispatcher.Do(ctx, func(e *Engine) {
		board = e.Board()
	})
	return board, err
}

// ListQueue returns the active queue in priority order with its report.
func (s *Service) ListQueue(ctx context.Context) (model.Report, error) {
	var queue []model.Patient
	err := s.dispatcher.Do(ctx, func(e *Engine) {
		queue = e.Queue()
	})
	if err != nil {
		return model.Report{}, err
	}
	return model.Report{Text: Render(queue), Count: len(queue), Patients: queue}, nil
}

// HistoryReport renders every registration ever accepted, in arrival order.
// History is append-only, so reports are cached by length.
func (s *Service) HistoryReport(ctx context.Context) (model.Report, error) {
	var size int
	if err := s.dispatcher.Do(ctx, func(e *Engine) {
		size = e.HistoryLen()
	}); err != nil {
		return model.Report{}, err
	}
	if cached, ok := s.reports.Get(historyKey(size)); ok {
		return cached.(model.Report), nil
	}

	var history []model.Patient
	if err := s.dispatcher.Do(ctx, func(e *Engine) {
		history = e.History()
	}); err != nil {
		return model.Report{}, err
	}
	report := model.Report{Text: Render(history), Count: len(history)}
	s.reports.Set(historyKey(len(history)), report, cache.DefaultExpiration)
	return report, nil
}

func historyKey(size int) string {
	return fmt.Sprintf("history:%d", size)
}

// Tick advances the scheduler once, outside the regular cadence.
func (s *Service) Tick(ctx context.Context) (TickOutcome, error) {
	return s.dispatcher.Tick(ctx)
}

func (s *Service) Symptoms() []model.SymptomInfo {
	return model.SymptomCatalogue()
}

// onTick runs on the dispatcher goroutine.
func (s *Service) onTick(out TickOutcome) {
	switch out.Transition {
	case TransitionStarted:
		s.metrics.TreatmentsStarted.Inc()
		s.metrics.TreatmentProgress.Set(0)
		s.emit(model.EventTreatmentStarted, out.Patient)
		s.logger.Info("treatment started",
			"patient_id", out.Patient.ID,
			"severity", out.Patient.Severity,
		)
	case TransitionProgressed:
		s.metrics.TreatmentProgress.Set(float64(out.Progress))
	case TransitionCompleted:
		s.metrics.TreatmentsCompleted.Inc()
		s.metrics.TreatmentProgress.Set(0)
		s.observeSizes(s.engine)
		if out.Popped {
			s.emit(model.EventTreatmentCompleted, out.Patient)
		}
		s.logger.Info("treatment completed",
			"patient_id", out.Patient.ID,
			"popped", out.Popped,
		)
	}
}

func (s *Service) observeSizes(e *Engine) {
	s.metrics.QueueSize.Set(float64(e.QueueLen()))
	s.metrics.HistorySize.Set(float64(e.HistoryLen()))
}

func (s *Service) emit(eventType model.EventType, p model.Patient) {
	if s.sink == nil {
		return
	}
	if !s.sink.Enqueue(model.NewTriageEvent(eventType, p, s.now())) {
		s.logger.Warn("triage event dropped", "event_type", string(eventType), "patient_id", p.ID)
	}
}
