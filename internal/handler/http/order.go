package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/beifitycom/backend/internal/middleware"
	"github.com/beifitycom/backend/internal/models"
	"github.com/beifitycom/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (*models.Order, string, error)
	RetryPayment(ctx context.Context, buyerID, orderID, phone string) (string, error)
	CancelItem(ctx context.Context, actorID, orderID, itemID, reason string) error
	MarkShipped(ctx context.Context, sellerID, orderID, itemID string) error
	MarkDelivered(ctx context.Context, sellerID, orderID, itemID string) error
	AcceptDelivery(ctx context.Context, buyerID, orderID, itemID string) error
	RejectDelivery(ctx context.Context, buyerID, orderID, itemID, reason string) error
	ListOrders(ctx context.Context, buyerID string) ([]models.Order, error)
	GetOrder(ctx context.Context, buyerID, orderID string) (*models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type placeOrderRequest struct {
	Phone           string                `json:"phone"`
	CustomerName    string                `json:"customerName"`
	DeliveryAddress string                `json:"deliveryAddress"`
	DeliveryFee     float64               `json:"deliveryFee"`
	Items           []placeOrderItemInput `json:"items"`
}

type placeOrderItemInput struct {
	ListingID string `json:"listingId"`
	Quantity  int    `json:"quantity"`
}

type placeOrderResponse struct {
	OrderID     string  `json:"orderId"`
	Reference   string  `json:"reference"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

// PlaceOrder creates an order and starts the payment attempt
// 201 — order created, push payment initiated
// 400 — malformed request
// 401 — unauthenticated
// 402 — gateway rejected the payment request
// 422 — invalid phone/amount/listing
// 500 — internal error
func (oh *OrderHandler) PlaceOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var req placeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		in := service.PlaceOrderInput{
			BuyerID:         payload.UserID,
			BuyerName:       req.CustomerName,
			Phone:           req.Phone,
			DeliveryAddress: req.DeliveryAddress,
			DeliveryFee:     req.DeliveryFee,
		}
		for _, it := range req.Items {
			in.Items = append(in.Items, service.PlaceOrderItemInput{
				ListingID: it.ListingID,
				Quantity:  it.Quantity,
			})
		}

		order, ref, err := oh.svc.PlaceOrder(r.Context(), in)
		if err != nil {
			writeOrderError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(placeOrderResponse{
			OrderID:     order.ID,
			Reference:   ref,
			TotalAmount: order.TotalAmount,
			Status:      order.Status,
		})
	}
}

type retryPaymentRequest struct {
	Phone string `json:"phone"`
}

// RetryPayment starts a fresh payment attempt for a pending order
func (oh *OrderHandler) RetryPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var req retryPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		ref, err := oh.svc.RetryPayment(r.Context(), payload.UserID, chi.URLParam(r, "orderID"), req.Phone)
		if err != nil {
			writeOrderError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"reference": ref})
	}
}

type itemActionRequest struct {
	Reason string `json:"reason"`
}

// CancelItem cancels one line item
func (oh *OrderHandler) CancelItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var req itemActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		err := oh.svc.CancelItem(r.Context(), payload.UserID,
			chi.URLParam(r, "orderID"), chi.URLParam(r, "itemID"), req.Reason)
		if err != nil {
			writeOrderError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// ItemStatusAction builds a handler for one seller/buyer item status action
func (oh *OrderHandler) ItemStatusAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		orderID := chi.URLParam(r, "orderID")
		itemID := chi.URLParam(r, "itemID")

		var req itemActionRequest
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
			r.Body.Close()
		}

		var err error
		switch action {
		case "ship":
			err = oh.svc.MarkShipped(r.Context(), payload.UserID, orderID, itemID)
		case "deliver":
			err = oh.svc.MarkDelivered(r.Context(), payload.UserID, orderID, itemID)
		case "accept":
			err = oh.svc.AcceptDelivery(r.Context(), payload.UserID, orderID, itemID)
		case "reject":
			err = oh.svc.RejectDelivery(r.Context(), payload.UserID, orderID, itemID, req.Reason)
		default:
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err != nil {
			writeOrderError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

type orderItemResponse struct {
	ID             string  `json:"id"`
	SellerID       string  `json:"sellerId"`
	ListingID      string  `json:"listingId"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	Status         string  `json:"status"`
	Cancelled      bool    `json:"cancelled"`
	Rejected       bool    `json:"rejected"`
	RefundStatus   string  `json:"refundStatus"`
	RefundedAmount float64 `json:"refundedAmount"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	TotalAmount     float64             `json:"totalAmount"`
	DeliveryFee     float64             `json:"deliveryFee"`
	Status          string              `json:"status"`
	DeliveryAddress string              `json:"deliveryAddress"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       string              `json:"createdAt"`
}

// ListOrders returns the authenticated buyer's orders
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		orders, err := oh.svc.ListOrders(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i]))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}

// GetOrder returns one of the buyer's orders
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		order, err := oh.svc.GetOrder(r.Context(), payload.UserID, chi.URLParam(r, "orderID"))
		if err != nil {
			writeOrderError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(toOrderResponse(order))
	}
}

func toOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:              order.ID,
		TotalAmount:     order.TotalAmount,
		DeliveryFee:     order.DeliveryFee,
		Status:          order.Status,
		DeliveryAddress: order.DeliveryAddress,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:             it.ID,
			SellerID:       it.SellerID,
			ListingID:      it.ListingID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			Status:         it.Status,
			Cancelled:      it.Cancelled,
			Rejected:       it.Rejected,
			RefundStatus:   it.RefundStatus,
			RefundedAmount: it.RefundedAmount,
		})
	}
	return resp
}

// writeOrderError maps the error taxonomy onto HTTP status codes
func writeOrderError(w http.ResponseWriter, err error) {
	var (
		validationErr *models.ValidationError
		gatewayErr    *models.GatewayError
	)

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &gatewayErr):
		http.Error(w, "payment request was not accepted", http.StatusPaymentRequired)
	case errors.Is(err, models.ErrDataNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrOrderNotOwned):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, models.ErrOrderNotPending):
		http.Error(w, "order is no longer pending", http.StatusConflict)
	case errors.Is(err, models.ErrPaymentInFlight):
		http.Error(w, "payment already in progress", http.StatusConflict)
	case errors.Is(err, models.ErrItemCancelled):
		http.Error(w, "item is cancelled", http.StatusConflict)
	case errors.Is(err, models.ErrInsufficientStock):
		http.Error(w, "insufficient stock", http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
