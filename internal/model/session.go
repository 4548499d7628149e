package model

import "time"

const (
	// DefaultSessionPageSize is the page size when the caller sends no limit.
	DefaultSessionPageSize = 100
	// MaxSessionPageSize is the largest page a session listing may return.
	MaxSessionPageSize = 500
)

// Session is one training occurrence (sessão de treino) of a student,
// performed or missed. Timestamp holds a time-zone-naive wall clock value
// (see Naive).
type Session struct {
	ID               int       `json:"id"`
	StudentID        int       `json:"aluno_id"`
	PlanID           *int      `json:"plano_treino_id"`
	Timestamp        time.Time `json:"data_hora"`
	Performed        bool      `json:"realizada"`
	PerformanceNotes *string   `json:"observacoes_performance"`
	AbsenceReason    *string   `json:"motivo_ausencia"`
	NeedsMakeup      bool      `json:"precisa_reposicao"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateSessionRequest is the payload for logging a session. Performed
// defaults to true.
type CreateSessionRequest struct {
	StudentID        int        `json:"aluno_id" binding:"required,gt=0"`
	PlanID           *int       `json:"plano_treino_id" binding:"omitempty,gt=0"`
	Timestamp        *WallClock `json:"data_hora"`
	Performed        *bool      `json:"realizada"`
	PerformanceNotes *string    `json:"observacoes_performance" binding:"omitempty,max=2000"`
	AbsenceReason    *string    `json:"motivo_ausencia" binding:"omitempty,max=2000"`
	NeedsMakeup      bool       `json:"precisa_reposicao"`
}

// ListSessionsQuery is the query string of GET /sessoes.
type ListSessionsQuery struct {
	StudentID *int   `form:"aluno_id" binding:"omitempty,gt=0"`
	From      string `form:"de" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"ate" binding:"omitempty,datetime=2006-01-02"`
	Performed *bool  `form:"realizada"`
	Limit     int    `form:"limit,default=100" binding:"min=1,max=500"`
	Offset    int    `form:"offset,default=0" binding:"min=0"`
}

// AdherenceQuery is the query string of GET /sessoes/frequencia/:aluno_id.
// An empty month means the current one.
type AdherenceQuery struct {
	ReferenceMonth string `form:"referencia_mes" binding:"omitempty,refmonth"`
}

// SessionFilter narrows a session listing. From and To are inclusive
// calendar days; the store expands them to start and end of day.
type SessionFilter struct {
	StudentID *int
	Performed *bool
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// AdherenceReport is the monthly adherence of a student.
type AdherenceReport struct {
	StudentID         int     `json:"aluno_id"`
	ReferenceMonth    string  `json:"referencia_mes"`
	ExpectedSessions  int     `json:"sessoes_previstas"`
	CompletedSessions int     `json:"sessoes_realizadas"`
	AdherenceRate     float64 `json:"taxa_adesao"`
}
