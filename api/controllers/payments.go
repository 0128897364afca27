package controllers

import (
	"net/http"

	"github.com/mohansky/ecom-backend/api/responses"
	"github.com/mohansky/ecom-backend/api/validators"
	"github.com/mohansky/ecom-backend/internal/payments"
	"github.com/mohansky/ecom-backend/pkg/logger"
)

// PaymentCreateOrder registers the cart total with the gateway and returns
// the gateway order plus the public widget key.
func PaymentCreateOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input payments.CreateOrderInput
		if err := validators.DecodeJSONBodyLenient(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}

// PaymentVerify checks the gateway signature and materializes the order.
func PaymentVerify(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input payments.VerifyInput
		if err := validators.DecodeJSONBodyLenient(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}
