package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mohansky/ecom-backend/internal/payments"
	pkgerrors "github.com/mohansky/ecom-backend/pkg/errors"
)

type fakePaymentsService struct {
	createInputs []payments.CreateOrderInput
	createResult *payments.CreateOrderResult
	createErr    error

	verifyInputs []payments.VerifyInput
	verifyResult *payments.VerifyResult
	verifyErr    error
}

func (f *fakePaymentsService) CreateOrder(ctx context.Context, input payments.CreateOrderInput) (*payments.CreateOrderResult, error) {
	f.createInputs = append(f.createInputs, input)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakePaymentsService) Verify(ctx context.Context, input payments.VerifyInput) (*payments.VerifyResult, error) {
	f.verifyInputs = append(f.verifyInputs, input)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResult, nil
}

func TestPaymentCreateOrderSuccess(t *testing.T) {
	svc := &fakePaymentsService{
		createResult: &payments.CreateOrderResult{
			Success: true,
			Order: payments.GatewayOrderView{
				ID:       "order_ABC",
				Amount:   36550,
				Currency: "INR",
				Status:   "created",
			},
			KeyID: "rzp_test_public",
		},
	}
	handler := PaymentCreateOrder(svc, nil)

	body := `{"amount":365.50,"receipt":"order_123","someExtraField":"ignored"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payment/create-order", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"key_id":"rzp_test_public"`)
	require.Len(t, svc.createInputs, 1)
	require.Equal(t, "order_123", svc.createInputs[0].Receipt)
}

func TestPaymentCreateOrderServiceErrorMapsToWireShape(t *testing.T) {
	svc := &fakePaymentsService{
		createErr: pkgerrors.New(pkgerrors.CodeValidation, "Amount and receipt are required"),
	}
	handler := PaymentCreateOrder(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/payment/create-order", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), `"error":"Amount and receipt are required"`)
}

func TestPaymentVerifyMalformedBodyRejected(t *testing.T) {
	svc := &fakePaymentsService{}
	handler := PaymentVerify(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(`{not json`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Empty(t, svc.verifyInputs)
}

func TestPaymentVerifyPassesDecodedInputThrough(t *testing.T) {
	svc := &fakePaymentsService{
		verifyResult: &payments.VerifyResult{
			Success: true,
			Message: "Payment verified and order created successfully",
			Order: payments.OrderView{
				ID:    uuid.New(),
				Total: decimal.NewFromInt(365),
			},
		},
	}
	handler := PaymentVerify(svc, nil)

	body := `{
		"razorpay_order_id": "order_ABC",
		"razorpay_payment_id": "pay_XYZ",
		"razorpay_signature": "sig",
		"cartDetails": {"items": [{"id": "prod-1", "quantity": "2", "price": 100}]}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, svc.verifyInputs, 1)
	input := svc.verifyInputs[0]
	require.Equal(t, "order_ABC", input.RazorpayOrderID)
	require.Equal(t, "pay_XYZ", input.RazorpayPaymentID)
	require.Len(t, input.CartDetails.Items, 1)
	require.Equal(t, 2, int(input.CartDetails.Items[0].Quantity))
}

func TestPaymentVerifySignatureFailureReturns400(t *testing.T) {
	svc := &fakePaymentsService{
		verifyErr: pkgerrors.New(pkgerrors.CodeSignature, "Invalid payment signature"),
	}
	handler := PaymentVerify(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(`{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"s"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), `"error":"Invalid payment signature"`)
}
