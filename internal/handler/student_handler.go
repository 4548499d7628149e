package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/response"
	"github.com/personal-system/personal-backend/internal/service"
	"github.com/personal-system/personal-backend/internal/validator"
)

// StudentHandler serves the student registry and the student's plans.
type StudentHandler struct {
	studentService *service.StudentService
	planService    *service.PlanService
}

func NewStudentHandler(studentService *service.StudentService, planService *service.PlanService) *StudentHandler {
	return &StudentHandler{studentService: studentService, planService: planService}
}

// Create godoc
// POST /api/v1/alunos
func (h *StudentHandler) Create(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, student)
}

// List godoc
// GET /api/v1/alunos
// Students ordered by name, each with its derived financial status and
// sessions performed this month.
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if students == nil {
		students = []model.StudentView{}
	}
	response.Success(c, http.StatusOK, students)
}

// Get godoc
// GET /api/v1/alunos/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// Update godoc
// PATCH /api/v1/alunos/:id
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// Delete godoc
// DELETE /api/v1/alunos/:id
// Removes the student together with plans, prescriptions, sessions and payments.
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPlans godoc
// GET /api/v1/alunos/:id/planos
func (h *StudentHandler) ListPlans(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	plans, err := h.planService.ListByStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if plans == nil {
		plans = []model.Plan{}
	}
	response.Success(c, http.StatusOK, plans)
}

// CreatePlan godoc
// POST /api/v1/alunos/:id/planos
// Same as POST /planos with the student taken from the path.
func (h *StudentHandler) CreatePlan(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.CreatePlanRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}
	req.StudentID = id

	plan, err := h.planService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, plan)
}
