package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/response"
	"github.com/personal-system/personal-backend/internal/service"
	"github.com/personal-system/personal-backend/internal/validator"
)

// PaymentHandler serves payments and the financial dashboard.
type PaymentHandler struct {
	paymentService *service.PaymentService
	financeService *service.FinanceService
}

func NewPaymentHandler(paymentService *service.PaymentService, financeService *service.FinanceService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, financeService: financeService}
}

// Create godoc
// POST /api/v1/pagamentos
// The reference month and payment date are always the current ones.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req model.CreatePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	p, err := h.paymentService.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// List godoc
// GET /api/v1/pagamentos?aluno_id=&referencia_mes=
func (h *PaymentHandler) List(c *gin.Context) {
	var q model.ListPaymentsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	payments, err := h.paymentService.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	response.Success(c, http.StatusOK, payments)
}

// Stats godoc
// GET /api/v1/pagamentos/estatisticas
// Current-month KPIs plus the trailing 12-month revenue series.
func (h *PaymentHandler) Stats(c *gin.Context) {
	kpis, err := h.financeService.KPIs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, kpis)
}

// Get godoc
// GET /api/v1/pagamentos/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	p, err := h.paymentService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Update godoc
// PUT /api/v1/pagamentos/:id
// Replaces amount, method and note only.
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	p, err := h.paymentService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Delete godoc
// DELETE /api/v1/pagamentos/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Pagamento removido com sucesso"})
}
