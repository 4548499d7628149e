package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/apperror"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/report"
	"github.com/personal-system/personal-backend/internal/repository"
)

// SessionService handles training session logging and monthly adherence.
type SessionService struct {
	sessions repository.SessionRepository
	students repository.StudentRepository
	plans    repository.PlanRepository
	payments repository.PaymentRepository
	now      Clock
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions repository.SessionRepository,
	students repository.StudentRepository,
	plans repository.PlanRepository,
	payments repository.PaymentRepository,
	now Clock,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		students: students,
		plans:    plans,
		payments: payments,
		now:      now,
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// Create logs a session. A missed session needs an absence reason, and a
// referenced plan must belong to the same student.
func (s *SessionService) Create(ctx context.Context, req model.CreateSessionRequest) (*model.Session, error) {
	performed := true
	if req.Performed != nil {
		performed = *req.Performed
	}
	if !performed && (req.AbsenceReason == nil || strings.TrimSpace(*req.AbsenceReason) == "") {
		return nil, apperror.Validation("motivo_ausencia", "Motivo da ausência é obrigatório quando a sessão não foi realizada")
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", req.StudentID)
		}
		return nil, apperror.Internal(err, "get student")
	}

	if req.PlanID != nil {
		plan, err := s.plans.GetByID(ctx, *req.PlanID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Internal(err, "get plan")
		}
		if plan == nil || plan.StudentID != req.StudentID {
			return nil, apperror.BusinessRule("plano_treino_id", "Plano de treino inválido para este aluno")
		}
	}

	ts := s.now()
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		ts = model.Naive(req.Timestamp.Time)
	}

	sess := model.Session{
		StudentID:        req.StudentID,
		PlanID:           req.PlanID,
		Timestamp:        ts,
		Performed:        performed,
		PerformanceNotes: req.PerformanceNotes,
		AbsenceReason:    req.AbsenceReason,
		NeedsMakeup:      req.NeedsMakeup,
	}
	if err := s.sessions.Create(ctx, &sess); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", req.StudentID)
		}
		return nil, apperror.Internal(err, "create session")
	}
	return &sess, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, id int) (*model.Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Sessão %d não encontrada", id)
		}
		return nil, apperror.Internal(err, "get session")
	}
	return sess, nil
}

// Delete removes one session.
func (s *SessionService) Delete(ctx context.Context, id int) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Sessão %d não encontrada", id)
		}
		return apperror.Internal(err, "delete session")
	}
	return nil
}

// List returns one page of sessions, newest first, and the total number of
// matching sessions.
func (s *SessionService) List(ctx context.Context, q model.ListSessionsQuery) ([]model.Session, int, error) {
	if q.Limit < 1 || q.Limit > model.MaxSessionPageSize {
		return nil, 0, apperror.Validation("limit", "limit deve estar entre 1 e %d", model.MaxSessionPageSize)
	}
	if q.Offset < 0 {
		return nil, 0, apperror.Validation("offset", "offset não pode ser negativo")
	}

	f := model.SessionFilter{
		StudentID: q.StudentID,
		Performed: q.Performed,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	var err error
	if f.From, err = parseDay(q.From, "de"); err != nil {
		return nil, 0, err
	}
	if f.To, err = parseDay(q.To, "ate"); err != nil {
		return nil, 0, err
	}

	sessions, total, err := s.sessions.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err, "list sessions")
	}
	return sessions, total, nil
}

// Adherence computes a student's adherence for refMonth ("MM/YYYY"),
// defaulting to the current month when refMonth is empty.
func (s *SessionService) Adherence(ctx context.Context, studentID int, refMonth string) (*model.AdherenceReport, error) {
	if strings.TrimSpace(refMonth) == "" {
		refMonth = report.RefMonthOf(s.now()).String()
	}
	month, err := report.ParseRefMonth(refMonth)
	if err != nil {
		return nil, apperror.Validation("referencia_mes", "%s", err.Error())
	}

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", studentID)
		}
		return nil, apperror.Internal(err, "get student")
	}

	bonus, err := s.payments.SumBonusSessions(ctx, studentID, month.String())
	if err != nil {
		return nil, apperror.Internal(err, "sum bonus sessions")
	}
	start, end := month.Bounds()
	qualifying, err := s.sessions.CountQualifying(ctx, studentID, start, end)
	if err != nil {
		return nil, apperror.Internal(err, "count sessions")
	}

	rep := report.ComputeAdherence(report.AdherenceInput{
		StudentID:       studentID,
		Month:           month,
		WeeklyFrequency: st.WeeklyFrequency,
		BonusSessions:   bonus,
		Qualifying:      qualifying,
	})
	return &rep, nil
}

func parseDay(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperror.Validation(field, "%s deve estar no formato AAAA-MM-DD", field)
	}
	return &d, nil
}
