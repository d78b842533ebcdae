package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/core"
	"github.com/fkhayef/splitease/internal/expense"
	"github.com/fkhayef/splitease/internal/group"
	"github.com/fkhayef/splitease/internal/notification"
	"github.com/fkhayef/splitease/pkg/middleware"
	"github.com/fkhayef/splitease/pkg/response"
)

// Handler handles HTTP requests for payments and settlement views
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/calculate", h.Calculate)

	r.Get("/expense/{expenseId}", h.GetSettlement)
	r.Get("/expense/{expenseId}/admin", h.GetAdminPayback)
	r.With(middleware.RequireMember).Post("/expense/{expenseId}/reminders", h.SendReminders)

	// Payments
	r.Post("/expense/{expenseId}/payments", h.RecordPayment)
	r.Get("/expense/{expenseId}/payments", h.ListPayments)
	r.Delete("/payments/{paymentId}", h.DeletePayment)

	return r
}

// writeError maps service errors onto HTTP responses
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, expense.ErrExpenseNotFound), errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, group.ErrGroupNotFound), errors.Is(err, group.ErrNoAdmin):
		response.NotFound(w, err.Error())
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, ErrInvalidPayment), errors.Is(err, ErrUnknownMember):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotAuthorized):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

func expenseID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "expenseId"))
}

// Calculate handles POST /settlements/calculate
// @Summary      Calculate pending amounts
// @Description  Run the settlement calculator on the given total and contributions; set admin_id for the admin payback view
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body CalculateRequest true "Total and contributions"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /settlements/calculate [post]
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	view, err := h.service.Calculate(&req)
	if err != nil {
		writeError(w, err, "Failed to calculate settlement")
		return
	}

	response.JSON(w, http.StatusOK, view.ToResponse())
}

// GetSettlement handles GET /settlements/expense/{expenseId}
// @Summary      Settlement for an expense
// @Description  Pending amount and status for every participant, with reminder text
// @Tags         settlements
// @Produce      json
// @Param        expenseId path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/expense/{expenseId} [get]
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	view, err := h.service.Settlement(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to calculate settlement")
		return
	}

	response.JSON(w, http.StatusOK, view.ToResponse())
}

// GetAdminPayback handles GET /settlements/expense/{expenseId}/admin
// @Summary      Admin payback for an expense
// @Description  Balances framed as money owed to the group admin
// @Tags         settlements
// @Produce      json
// @Param        expenseId path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/expense/{expenseId}/admin [get]
func (h *Handler) GetAdminPayback(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	view, err := h.service.AdminPayback(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to calculate admin payback")
		return
	}

	response.JSON(w, http.StatusOK, view.ToResponse())
}

// SendReminders handles POST /settlements/expense/{expenseId}/reminders
// @Summary      Send payment reminders
// @Description  Remind every participant who still owes; admin only
// @Tags         settlements
// @Produce      json
// @Param        expenseId path string true "Expense ID"
// @Param        X-Member-ID header string true "Acting member"
// @Success      200 {object} response.APIResponse{data=[]notification.ReminderResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/expense/{expenseId}/reminders [post]
func (h *Handler) SendReminders(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	actorID, _ := middleware.GetMemberID(r.Context())

	reminders, err := h.service.SendReminders(r.Context(), id, actorID)
	if err != nil {
		writeError(w, err, "Failed to send reminders")
		return
	}

	resp := make([]*notification.ReminderResponse, len(reminders))
	for i, rem := range reminders {
		resp[i] = rem.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// RecordPayment handles POST /settlements/expense/{expenseId}/payments
// @Summary      Record a payment
// @Description  Record money a participant paid towards an expense
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        expenseId path string true "Expense ID"
// @Param        request body RecordPaymentRequest true "Payment"
// @Success      201 {object} response.APIResponse{data=PaymentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/expense/{expenseId}/payments [post]
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to record payment")
		return
	}

	response.JSON(w, http.StatusCreated, payment.ToResponse())
}

// ListPayments handles GET /settlements/expense/{expenseId}/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, err := expenseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to list payments")
		return
	}

	resp := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = p.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// DeletePayment handles DELETE /settlements/payments/{paymentId}
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "paymentId"))
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	if err := h.service.DeletePayment(r.Context(), paymentID); err != nil {
		writeError(w, err, "Failed to delete payment")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Payment deleted successfully"})
}
