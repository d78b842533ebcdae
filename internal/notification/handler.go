package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/core"
	"github.com/fkhayef/splitease/pkg/response"
)

// Handler handles HTTP requests for reminder history
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for reminder endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/expense/{expenseId}", h.ListByExpense)

	return r
}

// ReminderResponse represents a reminder in API responses
type ReminderResponse struct {
	ID         uuid.UUID `json:"id"`
	MemberID   uuid.UUID `json:"member_id"`
	MemberName string    `json:"member_name"`
	Email      string    `json:"email,omitempty"`
	Channel    Channel   `json:"channel"`
	Amount     float64   `json:"amount"`
	Message    string    `json:"message"`
	Status     Status    `json:"status"`
	Error      *string   `json:"error,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

// ToResponse converts a Reminder to a ReminderResponse
func (r *Reminder) ToResponse() *ReminderResponse {
	return &ReminderResponse{
		ID:         r.ID,
		MemberID:   r.MemberID,
		MemberName: r.MemberName,
		Email:      r.Email,
		Channel:    r.Channel,
		Amount:     core.RoundToTwoDecimals(r.Amount),
		Message:    r.Message,
		Status:     r.Status,
		Error:      r.Error,
		CreatedAt:  r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ListByExpense handles GET /reminders/expense/{expenseId}
// @Summary      List reminders for an expense
// @Description  Reminder history with delivery status, newest first
// @Tags         reminders
// @Produce      json
// @Param        expenseId path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=[]ReminderResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /reminders/expense/{expenseId} [get]
func (h *Handler) ListByExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := uuid.Parse(chi.URLParam(r, "expenseId"))
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	reminders, err := h.service.ListByExpense(r.Context(), expenseID)
	if err != nil {
		response.InternalError(w, "Failed to list reminders")
		return
	}

	resp := make([]*ReminderResponse, len(reminders))
	for i, rem := range reminders {
		resp[i] = rem.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}
