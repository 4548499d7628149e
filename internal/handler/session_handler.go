package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/response"
	"github.com/personal-system/personal-backend/internal/service"
	"github.com/personal-system/personal-backend/internal/validator"
)

// SessionHandler serves the training log and adherence reports.
type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create godoc
// POST /api/v1/sessoes
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

// List godoc
// GET /api/v1/sessoes?aluno_id=&de=&ate=&realizada=&limit=&offset=
func (h *SessionHandler) List(c *gin.Context) {
	var q model.ListSessionsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	sessions, total, err := h.sessionService.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	response.SuccessWithPagination(c, http.StatusOK, sessions, &response.Pagination{
		Limit:      q.Limit,
		Offset:     q.Offset,
		TotalItems: total,
	})
}

// Adherence godoc
// GET /api/v1/sessoes/frequencia/:aluno_id?referencia_mes=MM/YYYY
func (h *SessionHandler) Adherence(c *gin.Context) {
	studentID, ok := paramID(c, "aluno_id")
	if !ok {
		return
	}

	var q model.AdherenceQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	rep, err := h.sessionService.Adherence(c.Request.Context(), studentID, q.ReferenceMonth)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rep)
}

// Get godoc
// GET /api/v1/sessoes/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Delete godoc
// DELETE /api/v1/sessoes/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
