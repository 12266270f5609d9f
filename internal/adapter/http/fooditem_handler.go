package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/logger"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

type FoodItemHandler struct {
	service interfaces.CatalogService
	logger  logger.Logger
}

func NewFoodItemHandler(service interfaces.CatalogService, logger logger.Logger) *FoodItemHandler {
	return &FoodItemHandler{service: service, logger: logger}
}

type FoodItemRequest struct {
	Name        string              `json:"name"`
	Price       float64             `json:"price"`
	IsAvailable *bool               `json:"is_available,omitempty"`
	Recipe      []RecipeLineRequest `json:"recipe"`
}

type RecipeLineRequest struct {
	RawMaterialID   int     `json:"raw_material_id"`
	QuantityPerUnit float64 `json:"quantity_per_unit"`
}

type FoodItemResponse struct {
	ID          int                  `json:"id"`
	Name        string               `json:"name"`
	Price       float64              `json:"price"`
	IsAvailable bool                 `json:"is_available"`
	Recipe      []RecipeLineResponse `json:"recipe"`
	CreatedAt   time.Time            `json:"created_at"`
}

type RecipeLineResponse struct {
	RawMaterialID   int     `json:"raw_material_id"`
	MaterialName    string  `json:"material_name"`
	Unit            string  `json:"unit"`
	QuantityPerUnit float64 `json:"quantity_per_unit"`
}

func (h *FoodItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FoodItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := validateFoodItemRequest(req); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	item, err := h.service.CreateFoodItem(r.Context(), toFoodItemCommand(req))
	if err != nil {
		h.logger.Error("food_item_creation_failed", "Failed to create food item", "", nil, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toFoodItemResponse(item))
}

func (h *FoodItemHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("available") == "true" {
		items, err := h.service.ListAvailableFoodItems(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, toFoodItemResponses(items))
		return
	}

	limit, offset := parsePagination(r)
	items, err := h.service.ListFoodItems(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFoodItemResponses(items))
}

func (h *FoodItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetFoodItem(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFoodItemResponse(item))
}

func (h *FoodItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req FoodItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := validateFoodItemRequest(req); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	item, err := h.service.UpdateFoodItem(r.Context(), id, toFoodItemCommand(req))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFoodItemResponse(item))
}

func (h *FoodItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteFoodItem(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateFoodItemRequest(req FoodItemRequest) []ValidationError {
	var errs []ValidationError
	if req.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}
	if req.Price <= 0 {
		errs = append(errs, ValidationError{Field: "price", Message: "price must be positive"})
	}
	if len(req.Recipe) == 0 {
		errs = append(errs, ValidationError{Field: "recipe", Message: "at least one recipe line is required"})
	}
	for _, line := range req.Recipe {
		if line.RawMaterialID <= 0 {
			errs = append(errs, ValidationError{Field: "recipe", Message: "raw_material_id is required"})
			break
		}
		if line.QuantityPerUnit <= 0 {
			errs = append(errs, ValidationError{Field: "recipe", Message: "quantity_per_unit must be positive"})
			break
		}
	}
	return errs
}

func toFoodItemCommand(req FoodItemRequest) interfaces.FoodItemCommand {
	cmd := interfaces.FoodItemCommand{
		Name:        req.Name,
		Price:       req.Price,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		cmd.IsAvailable = *req.IsAvailable
	}
	for _, line := range req.Recipe {
		cmd.Recipe = append(cmd.Recipe, interfaces.RecipeLineCommand{
			RawMaterialID:   line.RawMaterialID,
			QuantityPerUnit: line.QuantityPerUnit,
		})
	}
	return cmd
}

func toFoodItemResponse(item *domain.FoodItem) FoodItemResponse {
	resp := FoodItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Price:       item.Price,
		IsAvailable: item.IsAvailable,
		CreatedAt:   item.CreatedAt,
	}
	for _, line := range item.Recipe {
		resp.Recipe = append(resp.Recipe, RecipeLineResponse{
			RawMaterialID:   line.RawMaterialID,
			MaterialName:    line.MaterialName,
			Unit:            line.Unit,
			QuantityPerUnit: line.QuantityPerUnit,
		})
	}
	return resp
}

func toFoodItemResponses(items []*domain.FoodItem) []FoodItemResponse {
	resp := make([]FoodItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toFoodItemResponse(item))
	}
	return resp
}
