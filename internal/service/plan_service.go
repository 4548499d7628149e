package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/apperror"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/repository"
)

// PlanService handles workout plans and exercise prescriptions.
type PlanService struct {
	plans    repository.PlanRepository
	students repository.StudentRepository
	now      Clock
	log      zerolog.Logger
}

// NewPlanService creates a new PlanService.
func NewPlanService(plans repository.PlanRepository, students repository.StudentRepository, now Clock, log zerolog.Logger) *PlanService {
	return &PlanService{
		plans:    plans,
		students: students,
		now:      now,
		log:      log.With().Str("component", "plan_service").Logger(),
	}
}

// Create stores a plan and all of its prescriptions atomically.
func (s *PlanService) Create(ctx context.Context, req model.CreatePlanRequest) (*model.Plan, error) {
	if req.StudentID <= 0 {
		return nil, apperror.Validation("aluno_id", "aluno_id é obrigatório")
	}
	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", req.StudentID)
		}
		return nil, apperror.Internal(err, "get student")
	}

	plan := model.Plan{
		StudentID:     req.StudentID,
		Title:         strings.TrimSpace(req.Title),
		Objective:     req.Objective,
		Active:        true,
		CreatedAt:     s.now(),
		Prescriptions: make([]model.Prescription, 0, len(req.Prescriptions)),
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}
	if len([]rune(plan.Title)) < 3 {
		return nil, apperror.Validation("titulo", "Título deve ter ao menos 3 caracteres")
	}
	for i, in := range req.Prescriptions {
		p := in.Build(0)
		p.ExerciseName = strings.TrimSpace(p.ExerciseName)
		if err := validatePrescription(p, fmt.Sprintf("prescricoes[%d].", i)); err != nil {
			return nil, err
		}
		plan.Prescriptions = append(plan.Prescriptions, p)
	}

	if err := s.plans.CreateWithPrescriptions(ctx, &plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", req.StudentID)
		}
		return nil, apperror.Internal(err, "create plan")
	}

	s.log.Info().
		Int("plano_id", plan.ID).
		Int("aluno_id", plan.StudentID).
		Int("prescricoes", len(plan.Prescriptions)).
		Msg("Plan created")
	return &plan, nil
}

// ListByStudent returns the student's plans, newest first.
func (s *PlanService) ListByStudent(ctx context.Context, studentID int) ([]model.Plan, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Aluno %d não encontrado", studentID)
		}
		return nil, apperror.Internal(err, "get student")
	}
	plans, err := s.plans.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, apperror.Internal(err, "list plans")
	}
	return plans, nil
}

// Get returns a plan with its prescriptions.
func (s *PlanService) Get(ctx context.Context, id int) (*model.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Plano de treino %d não encontrado", id)
		}
		return nil, apperror.Internal(err, "get plan")
	}
	return plan, nil
}

// Deactivate clears the plan's active flag.
func (s *PlanService) Deactivate(ctx context.Context, id int) (*model.Plan, error) {
	if err := s.plans.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Plano de treino %d não encontrado", id)
		}
		return nil, apperror.Internal(err, "deactivate plan")
	}
	return s.Get(ctx, id)
}

// Delete removes a plan and its prescriptions. Sessions that referenced it
// are kept without a plan.
func (s *PlanService) Delete(ctx context.Context, id int) error {
	if err := s.plans.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Plano de treino %d não encontrado", id)
		}
		return apperror.Internal(err, "delete plan")
	}
	s.log.Info().Int("plano_id", id).Msg("Plan deleted")
	return nil
}

// AddPrescription appends one exercise to an existing plan.
func (s *PlanService) AddPrescription(ctx context.Context, planID int, in model.PrescriptionInput) (*model.Prescription, error) {
	if _, err := s.Get(ctx, planID); err != nil {
		return nil, err
	}
	p := in.Build(planID)
	p.ExerciseName = strings.TrimSpace(p.ExerciseName)
	if err := validatePrescription(p, ""); err != nil {
		return nil, err
	}
	if err := s.plans.AddPrescription(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Plano de treino %d não encontrado", planID)
		}
		return nil, apperror.Internal(err, "add prescription")
	}
	return &p, nil
}

// UpdatePrescription changes only the fields present in req.
func (s *PlanService) UpdatePrescription(ctx context.Context, id int, req model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	p, err := s.plans.GetPrescription(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Prescrição %d não encontrada", id)
		}
		return nil, apperror.Internal(err, "get prescription")
	}

	req.Apply(p)
	p.ExerciseName = strings.TrimSpace(p.ExerciseName)
	if err := validatePrescription(*p, ""); err != nil {
		return nil, err
	}

	if err := s.plans.UpdatePrescription(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Prescrição %d não encontrada", id)
		}
		return nil, apperror.Internal(err, "update prescription")
	}
	return p, nil
}

// DeletePrescription removes one exercise from its plan.
func (s *PlanService) DeletePrescription(ctx context.Context, id int) error {
	if err := s.plans.DeletePrescription(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Prescrição %d não encontrada", id)
		}
		return apperror.Internal(err, "delete prescription")
	}
	return nil
}

func validatePrescription(p model.Prescription, prefix string) error {
	switch {
	case len([]rune(p.ExerciseName)) < 2:
		return apperror.Validation(prefix+"nome_exercicio", "Nome do exercício deve ter ao menos 2 caracteres")
	case p.Sets <= 0:
		return apperror.Validation(prefix+"series", "Número de séries deve ser maior que zero")
	case strings.TrimSpace(p.Reps) == "":
		return apperror.Validation(prefix+"repeticoes", "Repetições são obrigatórias")
	case p.LoadKg != nil && *p.LoadKg < 0:
		return apperror.Validation(prefix+"carga_kg", "Carga não pode ser negativa")
	case p.RestSeconds < 0:
		return apperror.Validation(prefix+"tempo_descanso_segundos", "Tempo de descanso não pode ser negativo")
	}
	return nil
}
