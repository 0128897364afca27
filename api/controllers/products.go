package controllers

import (
	"net/http"
	"strings"

	"github.com/mohansky/ecom-backend/api/responses"
	"github.com/mohansky/ecom-backend/api/validators"
	"github.com/mohansky/ecom-backend/internal/products"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
	"github.com/mohansky/ecom-backend/pkg/logger"
)

type updateStockRequest struct {
	ProductID      string  `json:"productId"`
	VariantID      *string `json:"variantId"`
	QuantityChange *int    `json:"quantityChange"`
}

type updateStockResponse struct {
	Success bool `json:"success"`
}

// ProductUpdateStock applies a stock delta to a product or one of its variants.
func ProductUpdateStock(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input updateStockRequest
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(input.ProductID) == "" || input.QuantityChange == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields"))
			return
		}

		if _, err := svc.AdjustStock(r.Context(), products.AdjustStockInput{
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Delta:     *input.QuantityChange,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, updateStockResponse{Success: true})
	}
}
