package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mohansky/ecom-backend/api/responses"
	"github.com/mohansky/ecom-backend/api/validators"
	"github.com/mohansky/ecom-backend/internal/orders"
	"github.com/mohansky/ecom-backend/pkg/enums"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/logger"
)

// OrderGet returns the full order row for the confirmation view.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, order)
	}
}

type updateStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type updatedOrderView struct {
	ID        uuid.UUID         `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	Notes     *string           `json:"notes"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type updateStatusResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Order   updatedOrderView `json:"order"`
}

// OrderUpdateStatus transitions an order and appends a timestamped note.
func OrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input updateStatusRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(input.Status) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Status is required"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID: orderID,
			Status:  input.Status,
			Notes:   input.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, updateStatusResponse{
			Success: true,
			Message: "Order status updated successfully",
			Order: updatedOrderView{
				ID:        order.ID,
				Status:    order.Status,
				Notes:     order.Notes,
				UpdatedAt: order.UpdatedAt,
			},
		})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "Order ID is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid order ID")
	}
	return orderID, nil
}
