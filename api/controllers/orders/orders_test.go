package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campuskart/campuskart-backend/api/middleware"
	internalorders "github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/enums"
	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
)

type stubOrdersService struct {
	confirm            func(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error)
	reject             func(ctx context.Context, input internalorders.RejectInput) (*internalorders.OrderView, error)
	advance            func(ctx context.Context, input internalorders.AdvanceInput) (*internalorders.OrderView, error)
	cancel             func(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error)
	requestReturn      func(ctx context.Context, input internalorders.ReturnRequestInput) (*internalorders.OrderView, error)
	approveReturn      func(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error)
	rejectReturn       func(ctx context.Context, input internalorders.RejectInput) (*internalorders.OrderView, error)
	approveReplacement func(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error)
	settleFee          func(ctx context.Context, input internalorders.FeeSettlementInput) (*internalorders.FeeSettlementResult, error)
}

func (s *stubOrdersService) Confirm(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error) {
	if s.confirm != nil {
		return s.confirm(ctx, input)
	}
	return &internalorders.OrderView{}, nil
}

func (s *stubOrdersService) Reject(ctx context.Context, input internalorders.RejectInput) (*internalorders.OrderView, error) {
	if s.reject != nil {
		return s.reject(ctx, input)
	}
	return &internalorders.OrderView{}, nil
}

func (s *stubOrdersService) Advance(ctx context.Context, input internalorders.AdvanceInput) (*internalorders.OrderView, error) {
	if s.advance != nil {
		return s.advance(ctx, input)
	}
	return &internalorders.OrderView{}, nil
}

func (s *stubOrdersService) Cancel(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error) {
	if s.cancel != nil {
		return s.cancel(ctx, input)
	}
	return &internalorders.OrderView{}, nil
}

func (s *stubOrdersService) RequestReturn(ctx context.Context, input internalorders.ReturnRequestInput) (*internalorders.OrderView, error) {
	if s.requestReturn != nil {
		return s.requestReturn(ctx, input)
	}
	return &internalorders.OrderView{}, nil
}

func (s *stubOrdersService) ApproveReturn(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error) {
	if s.approveReturn != nil {
		return s.approveReturn(ctx, input)
	}
	return &internalorders.OrderView{}, nil
}

func (s *stubOrdersService) RejectReturn(ctx context.Context, input internalorders.RejectInput) (*internalorders.OrderView, error) {
	if s.rejectReturn != nil {
		return s.rejectReturn(ctx, input)
	}
	return &internalorders.OrderView{}, nil
}

func (s *stubOrdersService) ApproveReplacement(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error) {
	if s.approveReplacement != nil {
		return s.approveReplacement(ctx, input)
	}
	return &internalorders.OrderView{}, nil
}

func (s *stubOrdersService) MarkGroupDeliveryFeePaid(ctx context.Context, input internalorders.FeeSettlementInput) (*internalorders.FeeSettlementResult, error) {
	if s.settleFee != nil {
		return s.settleFee(ctx, input)
	}
	return &internalorders.FeeSettlementResult{}, nil
}

func (s *stubOrdersService) CancelStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	return 0, nil
}

func sellerRequest(method, target, orderID string, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.RoleSeller))
	ctx = middleware.WithSellerID(ctx, uuid.NewString())
	req = req.WithContext(ctx)
	if orderID != "" {
		req = addRouteParam(req, "orderId", orderID)
	}
	return req
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestConfirmPassesActorAndOrder(t *testing.T) {
	orderID := uuid.New()
	sellerID := uuid.New()
	userID := uuid.New()

	var got internalorders.DecisionInput
	svc := &stubOrdersService{
		confirm: func(ctx context.Context, input internalorders.DecisionInput) (*internalorders.OrderView, error) {
			got = input
			return &internalorders.OrderView{ID: orderID, Status: enums.OrderStatusProcessing}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/seller/orders/"+orderID.String()+"/confirm", nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.RoleSeller))
	ctx = middleware.WithSellerID(ctx, sellerID.String())
	req = req.WithContext(ctx)
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	Confirm(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.OrderID != orderID {
		t.Fatalf("unexpected order id %s", got.OrderID)
	}
	if got.Actor.UserID != userID {
		t.Fatalf("unexpected actor user %s", got.Actor.UserID)
	}
	if got.Actor.Role != enums.RoleSeller {
		t.Fatalf("unexpected actor role %s", got.Actor.Role)
	}
	if got.Actor.SellerID == nil || *got.Actor.SellerID != sellerID {
		t.Fatalf("seller id not propagated")
	}

	var envelope struct {
		Data internalorders.OrderView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != orderID {
		t.Fatalf("response missing order view")
	}
}

func TestConfirmRequiresUserContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seller/orders/"+uuid.NewString()+"/confirm", nil)
	req = addRouteParam(req, "orderId", uuid.NewString())

	resp := httptest.NewRecorder()
	Confirm(&stubOrdersService{}, nil)(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestConfirmRejectsMalformedOrderID(t *testing.T) {
	req := sellerRequest(http.MethodPost, "/api/v1/seller/orders/nope/confirm", "nope", "")

	resp := httptest.NewRecorder()
	Confirm(&stubOrdersService{}, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	orderID := uuid.New()
	called := false
	svc := &stubOrdersService{
		reject: func(ctx context.Context, input internalorders.RejectInput) (*internalorders.OrderView, error) {
			called = true
			return &internalorders.OrderView{}, nil
		},
	}

	req := sellerRequest(http.MethodPost, "/api/v1/seller/orders/"+orderID.String()+"/reject", orderID.String(), `{}`)
	resp := httptest.NewRecorder()
	Reject(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not run without a reason")
	}
}

func TestRejectPassesReason(t *testing.T) {
	orderID := uuid.New()
	var got internalorders.RejectInput
	svc := &stubOrdersService{
		reject: func(ctx context.Context, input internalorders.RejectInput) (*internalorders.OrderView, error) {
			got = input
			return &internalorders.OrderView{}, nil
		},
	}

	req := sellerRequest(http.MethodPost, "/api/v1/seller/orders/"+orderID.String()+"/reject", orderID.String(), `{"reason":"out of stock"}`)
	resp := httptest.NewRecorder()
	Reject(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.Reason != "out of stock" {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
}

func TestAdvanceParsesBelievedStatus(t *testing.T) {
	orderID := uuid.New()
	var got internalorders.AdvanceInput
	svc := &stubOrdersService{
		advance: func(ctx context.Context, input internalorders.AdvanceInput) (*internalorders.OrderView, error) {
			got = input
			return &internalorders.OrderView{}, nil
		},
	}

	req := sellerRequest(http.MethodPost, "/api/v1/seller/orders/"+orderID.String()+"/advance", orderID.String(), `{"believed_status":"packed"}`)
	resp := httptest.NewRecorder()
	Advance(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.BelievedStatus != enums.OrderStatusPacked {
		t.Fatalf("unexpected believed status %s", got.BelievedStatus)
	}
	if got.ExpectedDeliveryAt != nil {
		t.Fatal("expected delivery estimate to be absent")
	}
}

func TestAdvanceCarriesDeliveryEstimate(t *testing.T) {
	orderID := uuid.New()
	var got internalorders.AdvanceInput
	svc := &stubOrdersService{
		advance: func(ctx context.Context, input internalorders.AdvanceInput) (*internalorders.OrderView, error) {
			got = input
			return &internalorders.OrderView{}, nil
		},
	}

	body := `{"believed_status":"packed","expected_delivery_at":"2026-03-02T10:00:00Z"}`
	req := sellerRequest(http.MethodPost, "/api/v1/seller/orders/"+orderID.String()+"/advance", orderID.String(), body)
	resp := httptest.NewRecorder()
	Advance(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.ExpectedDeliveryAt == nil {
		t.Fatal("expected delivery estimate")
	}
	want := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if !got.ExpectedDeliveryAt.Equal(want) {
		t.Fatalf("unexpected estimate %s", got.ExpectedDeliveryAt)
	}
}

func TestAdvanceRejectsUnknownStatus(t *testing.T) {
	orderID := uuid.New()
	req := sellerRequest(http.MethodPost, "/api/v1/seller/orders/"+orderID.String()+"/advance", orderID.String(), `{"believed_status":"teleported"}`)
	resp := httptest.NewRecorder()
	Advance(&stubOrdersService{}, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdvanceSurfacesStateConflict(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{
		advance: func(ctx context.Context, input internalorders.AdvanceInput) (*internalorders.OrderView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status has changed").
				WithDetails(internalorders.StatusConflictDetails{
					ActualStatus:   enums.OrderStatusShipped,
					BelievedStatus: enums.OrderStatusPacked,
				})
		},
	}

	req := sellerRequest(http.MethodPost, "/api/v1/seller/orders/"+orderID.String()+"/advance", orderID.String(), `{"believed_status":"packed"}`)
	resp := httptest.NewRecorder()
	Advance(svc, nil)(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Details struct {
				ActualStatus string `json:"actual_status"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error.Details.ActualStatus != string(enums.OrderStatusShipped) {
		t.Fatalf("details missing actual status: %s", resp.Body.String())
	}
}

func TestRequestReturnParsesType(t *testing.T) {
	orderID := uuid.New()
	userID := uuid.New()
	var got internalorders.ReturnRequestInput
	svc := &stubOrdersService{
		requestReturn: func(ctx context.Context, input internalorders.ReturnRequestInput) (*internalorders.OrderView, error) {
			got = input
			return &internalorders.OrderView{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/return", strings.NewReader(`{"type":"replacement","reason":"wrong item"}`))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.RoleCustomer))
	req = req.WithContext(ctx)
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	RequestReturn(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.Type != enums.ReturnTypeReplacement {
		t.Fatalf("unexpected return type %s", got.Type)
	}
	if got.Reason != "wrong item" {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
	if got.Actor.SellerID != nil {
		t.Fatal("customer actor should have no seller id")
	}
}

func TestRequestReturnRejectsUnknownType(t *testing.T) {
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/return", strings.NewReader(`{"type":"store_credit","reason":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.RoleCustomer))
	req = req.WithContext(ctx)
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	RequestReturn(&stubOrdersService{}, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestConfirmReceiptAdvancesWithBelief(t *testing.T) {
	orderID := uuid.New()
	var got internalorders.AdvanceInput
	svc := &stubOrdersService{
		advance: func(ctx context.Context, input internalorders.AdvanceInput) (*internalorders.OrderView, error) {
			got = input
			return &internalorders.OrderView{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/confirm-receipt", strings.NewReader(`{"believed_status":"pending_delivery_confirmation"}`))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.RoleCustomer))
	req = req.WithContext(ctx)
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	ConfirmReceipt(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.BelievedStatus != enums.OrderStatusPendingDeliveryConfirmation {
		t.Fatalf("unexpected believed status %s", got.BelievedStatus)
	}
	if got.ExpectedDeliveryAt != nil {
		t.Fatal("confirm-receipt must not carry a delivery estimate")
	}
}

func TestSettleGroupFeeReturnsOutcome(t *testing.T) {
	groupID := uuid.New()
	updated := uuid.New()
	svc := &stubOrdersService{
		settleFee: func(ctx context.Context, input internalorders.FeeSettlementInput) (*internalorders.FeeSettlementResult, error) {
			if input.GroupID != groupID {
				t.Fatalf("unexpected group id %s", input.GroupID)
			}
			return &internalorders.FeeSettlementResult{
				GroupID: groupID,
				Updated: []uuid.UUID{updated},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/staff/order-groups/"+groupID.String()+"/delivery-fee/paid", nil)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.RoleStaff))
	req = req.WithContext(ctx)
	req = addRouteParam(req, "groupId", groupID.String())

	resp := httptest.NewRecorder()
	SettleGroupFee(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalorders.FeeSettlementResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Updated) != 1 || envelope.Data.Updated[0] != updated {
		t.Fatalf("unexpected settlement outcome")
	}
}
