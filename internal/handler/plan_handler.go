package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/response"
	"github.com/personal-system/personal-backend/internal/service"
	"github.com/personal-system/personal-backend/internal/validator"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Create godoc
// POST /api/v1/planos
// Creates the plan and all of its prescriptions, or nothing.
func (h *PlanHandler) Create(c *gin.Context) {
	var req model.CreatePlanRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, plan)
}

// Get godoc
// GET /api/v1/planos/:id
func (h *PlanHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, plan)
}

// Deactivate godoc
// PATCH /api/v1/planos/:id/desativar
func (h *PlanHandler) Deactivate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.Deactivate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, plan)
}

// Delete godoc
// DELETE /api/v1/planos/:id
func (h *PlanHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.planService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPrescription godoc
// POST /api/v1/planos/:id/exercicios
func (h *PlanHandler) AddPrescription(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.PrescriptionInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	p, err := h.planService.AddPrescription(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// UpdatePrescription godoc
// PATCH /api/v1/planos/exercicios/:id
func (h *PlanHandler) UpdatePrescription(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePrescriptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	p, err := h.planService.UpdatePrescription(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// DeletePrescription godoc
// DELETE /api/v1/planos/exercicios/:id
func (h *PlanHandler) DeletePrescription(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.planService.DeletePrescription(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
