package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"barkeep/internal/costing"
	applog "barkeep/internal/log"
	"barkeep/internal/money"
	"barkeep/models"
)

const recipesPathPrefix = "/api/recipes"

type recipeIngredientRequest struct {
	Kind         string  `json:"kind"`
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type recipeRequest struct {
	Code                     string                    `json:"code"`
	Title                    string                    `json:"title"`
	Method                   string                    `json:"method"`
	RecipeType               string                    `json:"recipe_type"`
	ItemLevel                string                    `json:"item_level"`
	FoodCategory             string                    `json:"food_category"`
	BeverageCategory         string                    `json:"beverage_category"`
	Garnish                  string                    `json:"garnish"`
	Glassware                string                    `json:"glassware"`
	Plates                   string                    `json:"plates"`
	SellingPrice             float64                   `json:"selling_price"`
	VATPercentage            float64                   `json:"vat_percentage"`
	ServiceChargePercentage  float64                   `json:"service_charge_percentage"`
	GovernmentFeesPercentage float64                   `json:"government_fees_percentage"`
	Ingredients              []recipeIngredientRequest `json:"ingredients"`
}

type recipeIngredientResponse struct {
	ID             uint    `json:"id"`
	Kind           string  `json:"kind"`
	IngredientID   uint    `json:"ingredient_id"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	IngredientName string  `json:"ingredient_name"`
	ProductCode    string  `json:"product_code"`
}

type recipeResponse struct {
	ID                       uint                       `json:"id"`
	Code                     string                     `json:"code"`
	Title                    string                     `json:"title"`
	Method                   string                     `json:"method"`
	RecipeType               string                     `json:"recipe_type"`
	ItemLevel                string                     `json:"item_level"`
	FoodCategory             string                     `json:"food_category"`
	BeverageCategory         string                     `json:"beverage_category"`
	Garnish                  string                     `json:"garnish"`
	Glassware                string                     `json:"glassware"`
	Plates                   string                     `json:"plates"`
	SellingPrice             float64                    `json:"selling_price"`
	SellingPriceWithFees     float64                    `json:"selling_price_with_fees"`
	VATPercentage            float64                    `json:"vat_percentage"`
	ServiceChargePercentage  float64                    `json:"service_charge_percentage"`
	GovernmentFeesPercentage float64                    `json:"government_fees_percentage"`
	Organisation             string                     `json:"organisation"`
	Ingredients              []recipeIngredientResponse `json:"ingredients"`
	TotalCost                float64                    `json:"total_cost"`
	CostPercentage           *float64                   `json:"cost_percentage"`
	HasMissingCost           bool                       `json:"has_missing_cost"`
	CreatedAt                time.Time                  `json:"created_at"`
	UpdatedAt                time.Time                  `json:"updated_at"`
}

type recipeCostResponse struct {
	ID             uint     `json:"id"`
	TotalCost      float64  `json:"total_cost"`
	CostPercentage *float64 `json:"cost_percentage"`
	HasMissingCost bool     `json:"has_missing_cost"`
	Currency       string   `json:"currency"`
	TotalDisplay   string   `json:"total_display"`
}

// RecipeResource handles CRUD, costing, and batch-summary lookups for
// recipes.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segments := resourcePath(r, recipesPathPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r, scope)
		case http.MethodPost:
			createRecipe(w, r, scope)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	recipeID, ok := parseID(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}

	if len(segments) > 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch segments[1] {
		case "cost":
			recipeCost(w, r, scope, recipeID)
		case "batch-summary":
			recipeBatchSummary(w, r, scope, recipeID)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, scope, recipeID)
	case http.MethodPut:
		updateRecipe(w, r, scope, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, scope, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var recipes []models.Recipe
	query := scopedQuery(database.WithContext(ctx), scope).Preload("Ingredients").Order("title asc")
	if err := query.Find(&recipes).Error; err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	engine := costEngine(ctx)
	responses := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		responses = append(responses, projectRecipe(&recipes[i], engine))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createRecipe(w http.ResponseWriter, r *http.Request, scope Scope) {
	if !requireRole(w, r, scope, models.RoleChef, models.RoleChefManager, models.RoleBartender, models.RoleManager) {
		return
	}

	ctx := r.Context()
	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		writeJSONError(w, http.StatusBadRequest, "title is required")
		return
	}

	lines, err := buildRecipeIngredients(ctx, payload.Ingredients)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipe := models.Recipe{
		Code:                     strings.TrimSpace(payload.Code),
		Title:                    title,
		Method:                   strings.TrimSpace(payload.Method),
		RecipeType:               strings.TrimSpace(payload.RecipeType),
		ItemLevel:                defaultString(payload.ItemLevel, "Primary"),
		FoodCategory:             strings.TrimSpace(payload.FoodCategory),
		BeverageCategory:         strings.TrimSpace(payload.BeverageCategory),
		Garnish:                  strings.TrimSpace(payload.Garnish),
		Glassware:                strings.TrimSpace(payload.Glassware),
		Plates:                   strings.TrimSpace(payload.Plates),
		SellingPrice:             payload.SellingPrice,
		VATPercentage:            payload.VATPercentage,
		ServiceChargePercentage:  payload.ServiceChargePercentage,
		GovernmentFeesPercentage: payload.GovernmentFeesPercentage,
		Organisation:             scope.Organisation,
		CreatedBy:                scope.UserID,
		LastEditedBy:             scope.UserID,
		Ingredients:              lines,
	}

	if err := database.WithContext(ctx).Create(&recipe).Error; err != nil {
		applog.Error(ctx, "failed to create recipe", "error", err, "title", title)
		writeJSONError(w, http.StatusBadRequest, "unable to create recipe")
		return
	}

	writeJSON(w, http.StatusCreated, projectRecipe(&recipe, costEngine(ctx)))
}

func showRecipe(w http.ResponseWriter, r *http.Request, scope Scope, recipeID uint) {
	ctx := r.Context()
	recipe, ok := loadRecipe(w, r, scope, recipeID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(recipe, costEngine(ctx)))
}

func updateRecipe(w http.ResponseWriter, r *http.Request, scope Scope, recipeID uint) {
	if !requireRole(w, r, scope, models.RoleChef, models.RoleChefManager, models.RoleBartender, models.RoleManager) {
		return
	}

	ctx := r.Context()
	recipe, ok := loadRecipe(w, r, scope, recipeID)
	if !ok {
		return
	}

	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		writeJSONError(w, http.StatusBadRequest, "title is required")
		return
	}

	lines, err := buildRecipeIngredients(ctx, payload.Ingredients)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Full replace: drop the previous ingredient lines and recreate from
	// the submitted set.
	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"code":                       strings.TrimSpace(payload.Code),
			"title":                      title,
			"method":                     strings.TrimSpace(payload.Method),
			"recipe_type":                strings.TrimSpace(payload.RecipeType),
			"item_level":                 defaultString(payload.ItemLevel, "Primary"),
			"food_category":              strings.TrimSpace(payload.FoodCategory),
			"beverage_category":          strings.TrimSpace(payload.BeverageCategory),
			"garnish":                    strings.TrimSpace(payload.Garnish),
			"glassware":                  strings.TrimSpace(payload.Glassware),
			"plates":                     strings.TrimSpace(payload.Plates),
			"selling_price":              payload.SellingPrice,
			"vat_percentage":             payload.VATPercentage,
			"service_charge_percentage":  payload.ServiceChargePercentage,
			"government_fees_percentage": payload.GovernmentFeesPercentage,
			"last_edited_by":             scope.UserID,
		}
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].RecipeID = recipe.ID
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update recipe")
		return
	}

	reloaded, ok := loadRecipe(w, r, scope, recipeID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(reloaded, costEngine(ctx)))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, scope Scope, recipeID uint) {
	if !requireRole(w, r, scope, models.RoleChef, models.RoleChefManager, models.RoleBartender, models.RoleManager) {
		return
	}

	ctx := r.Context()
	recipe, ok := loadRecipe(w, r, scope, recipeID)
	if !ok {
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func recipeCost(w http.ResponseWriter, r *http.Request, scope Scope, recipeID uint) {
	ctx := r.Context()
	recipe, ok := loadRecipe(w, r, scope, recipeID)
	if !ok {
		return
	}

	engine := costEngine(ctx)
	total := engine.RecipeTotalCost(recipe)
	response := recipeCostResponse{
		ID:             recipe.ID,
		TotalCost:      total,
		HasMissingCost: engine.RecipeHasMissingCost(recipe),
		Currency:       scope.Currency,
		TotalDisplay:   money.Format(total, scope.Currency),
	}
	if percentage, ok := recipe.CostPercentage(total); ok {
		response.CostPercentage = &percentage
	}
	writeJSON(w, http.StatusOK, response)
}

func recipeBatchSummary(w http.ResponseWriter, r *http.Request, scope Scope, recipeID uint) {
	ctx := r.Context()
	recipe, ok := loadRecipe(w, r, scope, recipeID)
	if !ok {
		return
	}

	summary := costEngine(ctx).BatchSummary(recipe)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         recipe.ID,
		"categories": costing.BatchCategories,
		"summary":    summary,
	})
}

func loadRecipe(w http.ResponseWriter, r *http.Request, scope Scope, recipeID uint) (*models.Recipe, bool) {
	ctx := r.Context()
	var recipe models.Recipe
	err := scopedQuery(database.WithContext(ctx), scope).Preload("Ingredients").First(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return nil, false
	}
	return &recipe, true
}

// buildRecipeIngredients validates submitted lines and snapshots each
// referenced entity's display name (and product code) for resilience against
// later deletion.
func buildRecipeIngredients(ctx context.Context, requests []recipeIngredientRequest) ([]models.RecipeIngredient, error) {
	lines := make([]models.RecipeIngredient, 0, len(requests))
	for _, req := range requests {
		if req.Quantity < 0 {
			return nil, errors.New("ingredient quantity must not be negative")
		}
		line := models.RecipeIngredient{
			Kind:         req.Kind,
			IngredientID: req.IngredientID,
			Quantity:     req.Quantity,
			Unit:         defaultString(req.Unit, models.UnitML),
		}

		db := database.WithContext(ctx)
		switch req.Kind {
		case models.KindProduct:
			var product models.Product
			if err := db.First(&product, req.IngredientID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.New("ingredient references an unknown product")
				}
				return nil, err
			}
			line.IngredientName = product.Description
			line.ProductCode = product.Code
		case models.KindHomemade:
			var homemade models.HomemadeIngredient
			if err := db.First(&homemade, req.IngredientID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.New("ingredient references an unknown homemade ingredient")
				}
				return nil, err
			}
			line.IngredientName = homemade.Name
		case models.KindRecipe:
			var nested models.Recipe
			if err := db.First(&nested, req.IngredientID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.New("ingredient references an unknown recipe")
				}
				return nil, err
			}
			line.IngredientName = nested.Title
		default:
			return nil, fmt.Errorf("unknown ingredient kind %q", req.Kind)
		}

		lines = append(lines, line)
	}
	return lines, nil
}

func projectRecipe(recipe *models.Recipe, engine *costing.Engine) recipeResponse {
	lines := make([]recipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		lines = append(lines, recipeIngredientResponse{
			ID:             line.ID,
			Kind:           line.Kind,
			IngredientID:   line.IngredientID,
			Quantity:       line.Quantity,
			Unit:           line.Unit,
			IngredientName: line.IngredientName,
			ProductCode:    line.ProductCode,
		})
	}

	total := engine.RecipeTotalCost(recipe)
	response := recipeResponse{
		ID:                       recipe.ID,
		Code:                     recipe.Code,
		Title:                    recipe.Title,
		Method:                   recipe.Method,
		RecipeType:               recipe.RecipeType,
		ItemLevel:                recipe.ItemLevel,
		FoodCategory:             recipe.FoodCategory,
		BeverageCategory:         recipe.BeverageCategory,
		Garnish:                  recipe.Garnish,
		Glassware:                recipe.Glassware,
		Plates:                   recipe.Plates,
		SellingPrice:             recipe.SellingPrice,
		SellingPriceWithFees:     recipe.SellingPriceWithFees(),
		VATPercentage:            recipe.VATPercentage,
		ServiceChargePercentage:  recipe.ServiceChargePercentage,
		GovernmentFeesPercentage: recipe.GovernmentFeesPercentage,
		Organisation:             recipe.Organisation,
		Ingredients:              lines,
		TotalCost:                total,
		HasMissingCost:           engine.RecipeHasMissingCost(recipe),
		CreatedAt:                recipe.CreatedAt,
		UpdatedAt:                recipe.UpdatedAt,
	}
	if percentage, ok := recipe.CostPercentage(total); ok {
		response.CostPercentage = &percentage
	}
	return response
}
