package model

import "time"

// DefaultRestSeconds is applied when a prescription omits its rest interval.
const DefaultRestSeconds = 60

// Plan is a workout plan (plano de treino) prescribed to a student.
type Plan struct {
	ID            int            `json:"id"`
	StudentID     int            `json:"aluno_id"`
	Title         string         `json:"titulo"`
	Objective     *string        `json:"objetivo_estrategico"`
	Active        bool           `json:"esta_ativo"`
	CreatedAt     time.Time      `json:"data_criacao"`
	Prescriptions []Prescription `json:"prescricoes"`
}

// Prescription is one exercise's set/rep/load/rest specification in a plan.
type Prescription struct {
	ID             int      `json:"id"`
	PlanID         int      `json:"plano_treino_id"`
	ExerciseName   string   `json:"nome_exercicio"`
	Sets           int      `json:"series"`
	Reps           string   `json:"repeticoes"`
	LoadKg         *float64 `json:"carga_kg"`
	RestSeconds    int      `json:"tempo_descanso_segundos"`
	TechniqueNotes *string  `json:"notas_tecnicas"`
}

// PrescriptionInput is one nested prescription in a plan payload.
type PrescriptionInput struct {
	ExerciseName   string   `json:"nome_exercicio" binding:"required,min=2,max=100"`
	Sets           int      `json:"series" binding:"required,gt=0"`
	Reps           string   `json:"repeticoes" binding:"required,max=30"`
	LoadKg         *float64 `json:"carga_kg" binding:"omitempty,gte=0"`
	RestSeconds    *int     `json:"tempo_descanso_segundos" binding:"omitempty,gte=0"`
	TechniqueNotes *string  `json:"notas_tecnicas" binding:"omitempty,max=1000"`
}

// CreatePlanRequest is the payload for creating a plan with its prescriptions.
// StudentID comes from the body on POST /planos and from the path on
// POST /alunos/:id/planos.
type CreatePlanRequest struct {
	StudentID     int                 `json:"aluno_id" binding:"omitempty,gt=0"`
	Title         string              `json:"titulo" binding:"required,min=3,max=120"`
	Objective     *string             `json:"objetivo_estrategico" binding:"omitempty,max=2000"`
	Active        *bool               `json:"esta_ativo"`
	Prescriptions []PrescriptionInput `json:"prescricoes" binding:"omitempty,dive"`
}

// UpdatePrescriptionRequest is a partial update; nil fields are untouched.
type UpdatePrescriptionRequest struct {
	ExerciseName   *string  `json:"nome_exercicio" binding:"omitempty,min=2,max=100"`
	Sets           *int     `json:"series" binding:"omitempty,gt=0"`
	Reps           *string  `json:"repeticoes" binding:"omitempty,min=1,max=30"`
	LoadKg         *float64 `json:"carga_kg" binding:"omitempty,gte=0"`
	RestSeconds    *int     `json:"tempo_descanso_segundos" binding:"omitempty,gte=0"`
	TechniqueNotes *string  `json:"notas_tecnicas" binding:"omitempty,max=1000"`
}

// Build converts the input into a prescription, applying defaults.
func (in PrescriptionInput) Build(planID int) Prescription {
	rest := DefaultRestSeconds
	if in.RestSeconds != nil {
		rest = *in.RestSeconds
	}
	return Prescription{
		PlanID:         planID,
		ExerciseName:   in.ExerciseName,
		Sets:           in.Sets,
		Reps:           in.Reps,
		LoadKg:         in.LoadKg,
		RestSeconds:    rest,
		TechniqueNotes: in.TechniqueNotes,
	}
}

// Apply copies the supplied fields onto p.
func (r UpdatePrescriptionRequest) Apply(p *Prescription) {
	if r.ExerciseName != nil {
		p.ExerciseName = *r.ExerciseName
	}
	if r.Sets != nil {
		p.Sets = *r.Sets
	}
	if r.Reps != nil {
		p.Reps = *r.Reps
	}
	if r.LoadKg != nil {
		p.LoadKg = r.LoadKg
	}
	if r.RestSeconds != nil {
		p.RestSeconds = *r.RestSeconds
	}
	if r.TechniqueNotes != nil {
		p.TechniqueNotes = r.TechniqueNotes
	}
}
