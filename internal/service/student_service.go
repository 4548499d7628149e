package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/personal-system/personal-backend/internal/apperror"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/report"
	"github.com/personal-system/personal-backend/internal/repository"
	"github.com/personal-system/personal-backend/internal/validator"
)

// StudentService handles student registration and the student read model.
type StudentService struct {
	students repository.StudentRepository
	payments repository.PaymentRepository
	sessions repository.SessionRepository
	notify   financeNotifier
	now      Clock
	log      zerolog.Logger
}

// NewStudentService creates a new StudentService. cache may be nil.
func NewStudentService(
	students repository.StudentRepository,
	payments repository.PaymentRepository,
	sessions repository.SessionRepository,
	cache KPICache,
	now Clock,
	log zerolog.Logger,
) *StudentService {
	l := log.With().Str("component", "student_service").Logger()
	return &StudentService{
		students: students,
		payments: payments,
		sessions: sessions,
		notify:   financeNotifier{cache: cache, log: l},
		now:      now,
		log:      l,
	}
}

// Create registers a student. The CPF is normalised to digits and its check
// digits verified before anything is written.
func (s *StudentService) Create(ctx context.Context, req model.CreateStudentRequest) (*model.StudentView, error) {
	cpf := validator.NormalizeCPF(req.CPF)
	if !validator.ValidCPF(cpf) {
		return nil, apperror.Validation("cpf", "CPF inválido")
	}

	st := model.Student{
		Name:            strings.TrimSpace(req.Name),
		CPF:             cpf,
		EnrollmentDate:  model.StartOfDay(s.now()),
		DueDay:          req.DueDay,
		WeeklyFrequency: req.WeeklyFrequency,
		MonthlyFee:      decimal.NewFromFloat(req.MonthlyFee).Round(2),
		Age:             req.Age,
		Goals:           req.Goals,
		Restrictions:    req.Restrictions,
	}
	if err := validateStudent(&st); err != nil {
		return nil, err
	}

	exists, err := s.students.ExistsByCPF(ctx, cpf)
	if err != nil {
		return nil, apperror.Internal(err, "check cpf")
	}
	if exists {
		return nil, apperror.Conflict("cpf", "CPF já cadastrado")
	}

	if err := s.students.Create(ctx, &st); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("cpf", "CPF já cadastrado")
		}
		return nil, apperror.Internal(err, "create student")
	}

	s.log.Info().Int("aluno_id", st.ID).Msg("Student created")
	s.notify.invalidate(ctx, report.RefMonthOf(s.now()).String())
	return s.derive(ctx, st)
}

// Get returns one student with its derived fields.
func (s *StudentService) Get(ctx context.Context, id int) (*model.StudentView, error) {
	st, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.derive(ctx, *st)
}

// List returns every student ordered by name, with derived fields.
func (s *StudentService) List(ctx context.Context) ([]model.StudentView, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "list students")
	}

	ref := report.RefMonthOf(s.now())
	paid, err := s.payments.StudentsPaidForMonth(ctx, ref.String())
	if err != nil {
		return nil, apperror.Internal(err, "load paid students")
	}
	counts, err := s.sessions.CountPerformedSinceByStudent(ctx, ref.Start())
	if err != nil {
		return nil, apperror.Internal(err, "count sessions")
	}

	views := make([]model.StudentView, 0, len(students))
	for _, st := range students {
		views = append(views, report.Derive(st, paid[st.ID], counts[st.ID]))
	}
	return views, nil
}

// Update applies a partial update. CPF and enrollment date are immutable.
func (s *StudentService) Update(ctx context.Context, id int, req model.UpdateStudentRequest) (*model.StudentView, error) {
	st, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		st.Name = strings.TrimSpace(*req.Name)
	}
	if req.Age != nil {
		st.Age = req.Age
	}
	if req.Goals != nil {
		st.Goals = req.Goals
	}
	if req.Restrictions != nil {
		st.Restrictions = req.Restrictions
	}
	if req.MonthlyFee != nil {
		st.MonthlyFee = decimal.NewFromFloat(*req.MonthlyFee).Round(2)
	}
	if req.WeeklyFrequency != nil {
		st.WeeklyFrequency = *req.WeeklyFrequency
	}
	if req.DueDay != nil {
		st.DueDay = *req.DueDay
	}
	if err := validateStudent(st); err != nil {
		return nil, err
	}

	if err := s.students.Update(ctx, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", id)
		}
		return nil, apperror.Internal(err, "update student")
	}
	return s.derive(ctx, *st)
}

// Delete removes a student together with its plans, prescriptions,
// payments and sessions.
func (s *StudentService) Delete(ctx context.Context, id int) (model.CascadeResult, error) {
	res, err := s.students.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return res, apperror.NotFound("Aluno %d não encontrado", id)
		}
		return res, apperror.Internal(err, "delete student")
	}

	s.log.Info().
		Int("aluno_id", id).
		Int64("planos", res.Plans).
		Int64("prescricoes", res.Prescriptions).
		Int64("pagamentos", res.Payments).
		Int64("sessoes", res.Sessions).
		Msg("Student deleted")
	s.notify.invalidate(ctx, report.RefMonthOf(s.now()).String())
	return res, nil
}

func (s *StudentService) find(ctx context.Context, id int) (*model.Student, error) {
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", id)
		}
		return nil, apperror.Internal(err, "get student")
	}
	return st, nil
}

// derive fills the current-month status and attendance. It only reads.
func (s *StudentService) derive(ctx context.Context, st model.Student) (*model.StudentView, error) {
	ref := report.RefMonthOf(s.now())
	paid, err := s.payments.ExistsForMonth(ctx, st.ID, ref.String())
	if err != nil {
		return nil, apperror.Internal(err, "check payment status")
	}
	count, err := s.sessions.CountPerformedSince(ctx, st.ID, ref.Start())
	if err != nil {
		return nil, apperror.Internal(err, "count sessions")
	}
	view := report.Derive(st, paid, count)
	return &view, nil
}

func validateStudent(st *model.Student) error {
	switch {
	case len([]rune(st.Name)) < 2:
		return apperror.Validation("nome", "Nome deve ter ao menos 2 caracteres")
	case st.DueDay < 1 || st.DueDay > 31:
		return apperror.Validation("dia_vencimento", "Dia de vencimento deve estar entre 1 e 31")
	case st.WeeklyFrequency <= 0:
		return apperror.Validation("frequencia_semanal_plano", "Frequência semanal deve ser maior que zero")
	case !st.MonthlyFee.IsPositive():
		return apperror.Validation("valor_mensalidade", "Valor da mensalidade deve ser maior que zero")
	case st.Age != nil && (*st.Age < 0 || *st.Age > 120):
		return apperror.Validation("idade", "Idade deve estar entre 0 e 120")
	}
	return nil
}
