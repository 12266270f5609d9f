package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/logger"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

type MaterialHandler struct {
	service interfaces.InventoryService
	logger  logger.Logger
}

func NewMaterialHandler(service interfaces.InventoryService, logger logger.Logger) *MaterialHandler {
	return &MaterialHandler{service: service, logger: logger}
}

type CreateMaterialRequest struct {
	Name              string  `json:"name"`
	Unit              string  `json:"unit"`
	QuantityAvailable float64 `json:"quantity_available"`
	MinimumThreshold  float64 `json:"minimum_threshold"`
}

type UpdateMaterialRequest struct {
	Name              *string  `json:"name,omitempty"`
	Unit              *string  `json:"unit,omitempty"`
	QuantityAvailable *float64 `json:"quantity_available,omitempty"`
	MinimumThreshold  *float64 `json:"minimum_threshold,omitempty"`
}

type RestockRequest struct {
	Amount float64 `json:"amount"`
}

type MaterialUsageResponse struct {
	RawMaterialName string   `json:"raw_material_name"`
	IsUsedInRecipes bool     `json:"is_used_in_recipes"`
	FoodItems       []string `json:"food_items"`
	UsageCount      int      `json:"usage_count"`
}

type MaterialResponse struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Unit              string    `json:"unit"`
	QuantityAvailable float64   `json:"quantity_available"`
	MinimumThreshold  float64   `json:"minimum_threshold"`
	IsLowStock        bool      `json:"is_low_stock"`
	CreatedAt         time.Time `json:"created_at"`
}

func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := validateCreateMaterialRequest(req); len(errs) > 0 {
		respondValidationErrors(w, errs)
		return
	}

	m, err := h.service.CreateMaterial(r.Context(), interfaces.CreateMaterialCommand{
		Name:             req.Name,
		Unit:             req.Unit,
		Quantity:         req.QuantityAvailable,
		MinimumThreshold: req.MinimumThreshold,
	})
	if err != nil {
		h.logger.Error("material_creation_failed", "Failed to create raw material", "", nil, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toMaterialResponse(m))
}

func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	materials, err := h.service.ListMaterials(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMaterialResponses(materials))
}

func (h *MaterialHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.ListLowStock(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMaterialResponses(materials))
}

func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	m, err := h.service.GetMaterial(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMaterialResponse(m))
}

func (h *MaterialHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	m, err := h.service.UpdateMaterial(r.Context(), id, interfaces.UpdateMaterialCommand{
		Name:             req.Name,
		Unit:             req.Unit,
		Quantity:         req.QuantityAvailable,
		MinimumThreshold: req.MinimumThreshold,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMaterialResponse(m))
}

func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMaterial(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MaterialHandler) Usage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	report, err := h.service.MaterialUsage(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	items := report.FoodItems
	if items == nil {
		items = []string{}
	}
	respondJSON(w, http.StatusOK, MaterialUsageResponse{
		RawMaterialName: report.MaterialName,
		IsUsedInRecipes: len(items) > 0,
		FoodItems:       items,
		UsageCount:      len(items),
	})
}

func (h *MaterialHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	m, err := h.service.Restock(r.Context(), id, req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMaterialResponse(m))
}

func validateCreateMaterialRequest(req CreateMaterialRequest) []ValidationError {
	var errs []ValidationError
	if req.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}
	if req.Unit == "" {
		errs = append(errs, ValidationError{Field: "unit", Message: "unit is required"})
	}
	if req.QuantityAvailable < 0 {
		errs = append(errs, ValidationError{Field: "quantity_available", Message: "must not be negative"})
	}
	if req.MinimumThreshold < 0 {
		errs = append(errs, ValidationError{Field: "minimum_threshold", Message: "must not be negative"})
	}
	return errs
}

func toMaterialResponse(m *domain.RawMaterial) MaterialResponse {
	return MaterialResponse{
		ID:                m.ID,
		Name:              m.Name,
		Unit:              m.Unit,
		QuantityAvailable: m.QuantityAvailable,
		MinimumThreshold:  m.MinimumThreshold,
		IsLowStock:        m.IsLowStock(),
		CreatedAt:         m.CreatedAt,
	}
}

func toMaterialResponses(materials []*domain.RawMaterial) []MaterialResponse {
	resp := make([]MaterialResponse, 0, len(materials))
	for _, m := range materials {
		resp = append(resp, toMaterialResponse(m))
	}
	return resp
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid id"})
		return 0, false
	}
	return id, true
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
