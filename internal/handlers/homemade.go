package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"barkeep/internal/costing"
	applog "barkeep/internal/log"
	"barkeep/internal/money"
	"barkeep/models"
)

const homemadePathPrefix = "/api/homemade-ingredients"

type homemadeItemRequest struct {
	ProductID *uint   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

type homemadeRequest struct {
	Name          string                `json:"name"`
	Code          string                `json:"code"`
	TotalVolumeML float64               `json:"total_volume_ml"`
	Unit          string                `json:"unit"`
	Method        string                `json:"method"`
	Category      string                `json:"category"`
	SubCategory   string                `json:"sub_category"`
	Items         []homemadeItemRequest `json:"items"`
}

type homemadeItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   *uint   `json:"product_id"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	ProductName string  `json:"product_name"`
	ProductCode string  `json:"product_code"`
}

type homemadeResponse struct {
	ID             uint                   `json:"id"`
	Name           string                 `json:"name"`
	Code           string                 `json:"code"`
	TotalVolumeML  float64                `json:"total_volume_ml"`
	Unit           string                 `json:"unit"`
	Method         string                 `json:"method"`
	Category       string                 `json:"category"`
	SubCategory    string                 `json:"sub_category"`
	Organisation   string                 `json:"organisation"`
	Items          []homemadeItemResponse `json:"items"`
	TotalCost      float64                `json:"total_cost"`
	CostPerUnit    float64                `json:"cost_per_unit"`
	HasMissingCost bool                   `json:"has_missing_cost"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type homemadeCostResponse struct {
	ID             uint    `json:"id"`
	TotalCost      float64 `json:"total_cost"`
	CostPerUnit    float64 `json:"cost_per_unit"`
	HasMissingCost bool    `json:"has_missing_cost"`
	Currency       string  `json:"currency"`
	TotalDisplay   string  `json:"total_display"`
}

// HomemadeIngredientResource handles CRUD and cost lookups for homemade
// (secondary) ingredients.
func HomemadeIngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segments := resourcePath(r, homemadePathPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listHomemadeIngredients(w, r, scope)
		case http.MethodPost:
			createHomemadeIngredient(w, r, scope)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	homemadeID, ok := parseID(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}

	if len(segments) > 1 && segments[1] == "cost" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		homemadeCost(w, r, scope, homemadeID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showHomemadeIngredient(w, r, scope, homemadeID)
	case http.MethodPut:
		updateHomemadeIngredient(w, r, scope, homemadeID)
	case http.MethodDelete:
		deleteHomemadeIngredient(w, r, scope, homemadeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listHomemadeIngredients(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var ingredients []models.HomemadeIngredient
	query := scopedQuery(database.WithContext(ctx), scope).Preload("Items").Order("name asc")
	if err := query.Find(&ingredients).Error; err != nil {
		applog.Error(ctx, "failed to list homemade ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load homemade ingredients")
		return
	}

	engine := costEngine(ctx)
	responses := make([]homemadeResponse, 0, len(ingredients))
	for i := range ingredients {
		responses = append(responses, projectHomemade(&ingredients[i], engine))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createHomemadeIngredient(w http.ResponseWriter, r *http.Request, scope Scope) {
	if !requireRole(w, r, scope, models.RoleChef, models.RoleChefManager, models.RoleBartender, models.RoleManager) {
		return
	}

	ctx := r.Context()
	var payload homemadeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if payload.TotalVolumeML <= 0 {
		writeJSONError(w, http.StatusBadRequest, "total_volume_ml must be positive")
		return
	}

	items, err := buildHomemadeItems(ctx, payload.Items)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ingredient := models.HomemadeIngredient{
		Name:          name,
		Code:          strings.TrimSpace(payload.Code),
		TotalVolumeML: payload.TotalVolumeML,
		Unit:          defaultString(payload.Unit, models.UnitML),
		Method:        strings.TrimSpace(payload.Method),
		Category:      strings.TrimSpace(payload.Category),
		SubCategory:   strings.TrimSpace(payload.SubCategory),
		Organisation:  scope.Organisation,
		CreatedBy:     scope.UserID,
		LastEditedBy:  scope.UserID,
		Items:         items,
	}

	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to create homemade ingredient", "error", err, "name", name)
		writeJSONError(w, http.StatusBadRequest, "unable to create homemade ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectHomemade(&ingredient, costEngine(ctx)))
}

func showHomemadeIngredient(w http.ResponseWriter, r *http.Request, scope Scope, homemadeID uint) {
	ctx := r.Context()
	ingredient, ok := loadHomemadeIngredient(w, r, scope, homemadeID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectHomemade(ingredient, costEngine(ctx)))
}

func updateHomemadeIngredient(w http.ResponseWriter, r *http.Request, scope Scope, homemadeID uint) {
	if !requireRole(w, r, scope, models.RoleChef, models.RoleChefManager, models.RoleBartender, models.RoleManager) {
		return
	}

	ctx := r.Context()
	ingredient, ok := loadHomemadeIngredient(w, r, scope, homemadeID)
	if !ok {
		return
	}

	var payload homemadeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if payload.TotalVolumeML <= 0 {
		writeJSONError(w, http.StatusBadRequest, "total_volume_ml must be positive")
		return
	}

	items, err := buildHomemadeItems(ctx, payload.Items)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Full replace: drop the previous component lines and recreate from the
	// submitted set.
	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":            name,
			"code":            strings.TrimSpace(payload.Code),
			"total_volume_ml": payload.TotalVolumeML,
			"unit":            defaultString(payload.Unit, models.UnitML),
			"method":          strings.TrimSpace(payload.Method),
			"category":        strings.TrimSpace(payload.Category),
			"sub_category":    strings.TrimSpace(payload.SubCategory),
			"last_edited_by":  scope.UserID,
		}
		if err := tx.Model(ingredient).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("homemade_ingredient_id = ?", ingredient.ID).
			Delete(&models.HomemadeIngredientItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].HomemadeIngredientID = ingredient.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to update homemade ingredient", "error", err, "id", homemadeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update homemade ingredient")
		return
	}

	reloaded, ok := loadHomemadeIngredient(w, r, scope, homemadeID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectHomemade(reloaded, costEngine(ctx)))
}

func deleteHomemadeIngredient(w http.ResponseWriter, r *http.Request, scope Scope, homemadeID uint) {
	if !requireRole(w, r, scope, models.RoleChef, models.RoleChefManager, models.RoleBartender, models.RoleManager) {
		return
	}

	ctx := r.Context()
	ingredient, ok := loadHomemadeIngredient(w, r, scope, homemadeID)
	if !ok {
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("homemade_ingredient_id = ?", ingredient.ID).
			Delete(&models.HomemadeIngredientItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(ingredient).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete homemade ingredient", "error", err, "id", homemadeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete homemade ingredient")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func homemadeCost(w http.ResponseWriter, r *http.Request, scope Scope, homemadeID uint) {
	ctx := r.Context()
	ingredient, ok := loadHomemadeIngredient(w, r, scope, homemadeID)
	if !ok {
		return
	}

	engine := costEngine(ctx)
	total := engine.HomemadeTotalCost(ingredient)
	writeJSON(w, http.StatusOK, homemadeCostResponse{
		ID:             ingredient.ID,
		TotalCost:      total,
		CostPerUnit:    engine.HomemadeCostPerUnit(ingredient),
		HasMissingCost: engine.HomemadeHasMissingCost(ingredient),
		Currency:       scope.Currency,
		TotalDisplay:   money.Format(total, scope.Currency),
	})
}

func loadHomemadeIngredient(w http.ResponseWriter, r *http.Request, scope Scope, homemadeID uint) (*models.HomemadeIngredient, bool) {
	ctx := r.Context()
	var ingredient models.HomemadeIngredient
	err := scopedQuery(database.WithContext(ctx), scope).Preload("Items").First(&ingredient, homemadeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		applog.Error(ctx, "failed to load homemade ingredient", "error", err, "id", homemadeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load homemade ingredient")
		return nil, false
	}
	return &ingredient, true
}

// buildHomemadeItems validates submitted component lines and snapshots the
// referenced product's name and code so lines survive product deletion.
func buildHomemadeItems(ctx context.Context, requests []homemadeItemRequest) ([]models.HomemadeIngredientItem, error) {
	items := make([]models.HomemadeIngredientItem, 0, len(requests))
	for _, req := range requests {
		if req.Quantity < 0 {
			return nil, errors.New("item quantity must not be negative")
		}
		item := models.HomemadeIngredientItem{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Unit:      defaultString(req.Unit, models.UnitML),
		}
		if req.ProductID != nil {
			var product models.Product
			if err := database.WithContext(ctx).First(&product, *req.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.New("item references an unknown product")
				}
				return nil, err
			}
			item.ProductName = product.Description
			item.ProductCode = product.Code
		}
		items = append(items, item)
	}
	return items, nil
}

func projectHomemade(ingredient *models.HomemadeIngredient, engine *costing.Engine) homemadeResponse {
	items := make([]homemadeItemResponse, 0, len(ingredient.Items))
	for _, item := range ingredient.Items {
		items = append(items, homemadeItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
		})
	}

	return homemadeResponse{
		ID:             ingredient.ID,
		Name:           ingredient.Name,
		Code:           ingredient.Code,
		TotalVolumeML:  ingredient.TotalVolumeML,
		Unit:           ingredient.Unit,
		Method:         ingredient.Method,
		Category:       ingredient.Category,
		SubCategory:    ingredient.SubCategory,
		Organisation:   ingredient.Organisation,
		Items:          items,
		TotalCost:      engine.HomemadeTotalCost(ingredient),
		CostPerUnit:    engine.HomemadeCostPerUnit(ingredient),
		HasMissingCost: engine.HomemadeHasMissingCost(ingredient),
		CreatedAt:      ingredient.CreatedAt,
		UpdatedAt:      ingredient.UpdatedAt,
	}
}
