package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/logger"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{service: service, logger: logger}
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	FoodItemID int `json:"food_item_id"`
	Quantity   int `json:"quantity"`
}

type OrderResponse struct {
	ID         int                 `json:"id"`
	Status     string              `json:"status"`
	TotalPrice float64             `json:"total_price"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	FoodItemID   int     `json:"food_item_id"`
	FoodItemName string  `json:"food_item_name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Subtotal     float64 `json:"subtotal"`
}

type AvailabilityResponse struct {
	Sufficient bool                           `json:"sufficient"`
	TotalPrice float64                        `json:"total_price"`
	Materials  []MaterialAvailabilityResponse `json:"materials"`
}

type MaterialAvailabilityResponse struct {
	RawMaterialID int     `json:"raw_material_id"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	Required      float64 `json:"required"`
	Available     float64 `json:"available"`
	Shortfall     float64 `json:"shortfall"`
}

func (h *OrderHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	lines, ok := h.decodeLines(w, r)
	if !ok {
		return
	}

	report, err := h.service.CheckAvailability(r.Context(), lines)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := AvailabilityResponse{
		Sufficient: report.Sufficient,
		TotalPrice: report.TotalPrice,
	}
	for _, m := range report.Materials {
		resp.Materials = append(resp.Materials, MaterialAvailabilityResponse{
			RawMaterialID: m.RawMaterialID,
			Name:          m.Name,
			Unit:          m.Unit,
			Required:      m.Required,
			Available:     m.Available,
			Shortfall:     m.Shortfall,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	lines, ok := h.decodeLines(w, r)
	if !ok {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), interfaces.CreateOrderCommand{Lines: lines})
	if err != nil {
		h.logger.Error("order_creation_failed", "Failed to create order", "", nil, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	orders, err := h.service.ListOrders(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CancelOrder)
}

func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CompleteOrder)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int) (*domain.Order, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := fn(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) decodeLines(w http.ResponseWriter, r *http.Request) ([]interfaces.OrderLineCommand, bool) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return nil, false
	}

	if errs := validateCreateOrderRequest(req); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return nil, false
	}

	lines := make([]interfaces.OrderLineCommand, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, interfaces.OrderLineCommand{
			FoodItemID: item.FoodItemID,
			Quantity:   item.Quantity,
		})
	}
	return lines, true
}

func validateCreateOrderRequest(req CreateOrderRequest) []ValidationError {
	var errs []ValidationError
	if len(req.Items) == 0 {
		errs = append(errs, ValidationError{Field: "items", Message: "order must have at least one item"})
	}
	for _, item := range req.Items {
		if item.FoodItemID <= 0 {
			errs = append(errs, ValidationError{Field: "items", Message: "food_item_id is required"})
			break
		}
		if item.Quantity <= 0 {
			errs = append(errs, ValidationError{Field: "items", Message: "quantity must be positive"})
			break
		}
	}
	return errs
}

func toOrderResponse(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:         order.ID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	for _, line := range order.Lines {
		resp.Items = append(resp.Items, OrderItemResponse{
			FoodItemID:   line.FoodItemID,
			FoodItemName: line.FoodItemName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			Subtotal:     line.Subtotal,
		})
	}
	return resp
}
