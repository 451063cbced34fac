package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"barkeep/internal/categorize"
	applog "barkeep/internal/log"
	"barkeep/models"
)

const productsPathPrefix = "/api/products"

type productResponse struct {
	ID                  uint      `json:"id"`
	Code                string    `json:"code"`
	UniqueItemNumber    string    `json:"unique_item_number"`
	Description         string    `json:"description"`
	Supplier            string    `json:"supplier"`
	SupplierProductCode string    `json:"supplier_product_code"`
	Category            string    `json:"category"`
	SubCategory         string    `json:"sub_category"`
	ItemLevel           string    `json:"item_level"`
	SellingUnit         string    `json:"selling_unit"`
	CostPerUnit         float64   `json:"cost_per_unit"`
	MlInBottle          float64   `json:"ml_in_bottle"`
	ABV                 float64   `json:"abv"`
	PurchaseType        string    `json:"purchase_type"`
	BottlesPerCase      int       `json:"bottles_per_case"`
	CaseCost            float64   `json:"case_cost"`
	Organisation        string    `json:"organisation"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type productRequest struct {
	Code                string  `json:"code"`
	UniqueItemNumber    string  `json:"unique_item_number"`
	Description         string  `json:"description"`
	Supplier            string  `json:"supplier"`
	SupplierProductCode string  `json:"supplier_product_code"`
	Category            string  `json:"category"`
	SubCategory         string  `json:"sub_category"`
	ItemLevel           string  `json:"item_level"`
	SellingUnit         string  `json:"selling_unit"`
	CostPerUnit         float64 `json:"cost_per_unit"`
	MlInBottle          float64 `json:"ml_in_bottle"`
	ABV                 float64 `json:"abv"`
	PurchaseType        string  `json:"purchase_type"`
	BottlesPerCase      int     `json:"bottles_per_case"`
}

// ProductResource handles REST-style interactions with the product master
// list.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segments := resourcePath(r, productsPathPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listProducts(w, r, scope)
		case http.MethodPost:
			createProduct(w, r, scope)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	productID, ok := parseID(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showProduct(w, r, scope, productID)
	case http.MethodPut:
		updateProduct(w, r, scope, productID)
	case http.MethodDelete:
		deleteProduct(w, r, scope, productID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProducts(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var products []models.Product
	query := scopedQuery(database.WithContext(ctx), scope).Order("code asc")
	if err := query.Find(&products).Error; err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	responses := make([]productResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, projectProduct(product))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createProduct(w http.ResponseWriter, r *http.Request, scope Scope) {
	if !requireRole(w, r, scope, models.RoleManager, models.RolePurchaseManager, models.RoleCostController) {
		return
	}

	ctx := r.Context()
	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	code := strings.TrimSpace(payload.Code)
	description := strings.TrimSpace(payload.Description)
	if code == "" || description == "" {
		writeJSONError(w, http.StatusBadRequest, "code and description are required")
		return
	}
	if payload.CostPerUnit < 0 {
		writeJSONError(w, http.StatusBadRequest, "cost_per_unit must not be negative")
		return
	}

	category := strings.TrimSpace(payload.Category)
	subCategory := strings.TrimSpace(payload.SubCategory)
	if category == "" && subCategory == "" {
		category, subCategory = categorize.Categorize(description)
	}

	product := models.Product{
		Code:                code,
		UniqueItemNumber:    strings.TrimSpace(payload.UniqueItemNumber),
		Description:         description,
		Supplier:            strings.TrimSpace(payload.Supplier),
		SupplierProductCode: strings.TrimSpace(payload.SupplierProductCode),
		Category:            category,
		SubCategory:         subCategory,
		ItemLevel:           defaultString(payload.ItemLevel, "Primary"),
		SellingUnit:         defaultString(payload.SellingUnit, models.UnitML),
		CostPerUnit:         payload.CostPerUnit,
		MlInBottle:          payload.MlInBottle,
		ABV:                 payload.ABV,
		PurchaseType:        defaultString(payload.PurchaseType, models.PurchaseEach),
		BottlesPerCase:      payload.BottlesPerCase,
		Organisation:        scope.Organisation,
		CreatedBy:           scope.UserID,
		LastEditedBy:        scope.UserID,
	}
	if product.BottlesPerCase <= 0 {
		product.BottlesPerCase = 1
	}

	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		applog.Error(ctx, "failed to create product", "error", err, "code", code)
		writeJSONError(w, http.StatusBadRequest, "unable to create product")
		return
	}

	writeJSON(w, http.StatusCreated, projectProduct(product))
}

func showProduct(w http.ResponseWriter, r *http.Request, scope Scope, productID uint) {
	product, ok := loadProduct(w, r, scope, productID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectProduct(*product))
}

func updateProduct(w http.ResponseWriter, r *http.Request, scope Scope, productID uint) {
	if !requireRole(w, r, scope, models.RoleManager, models.RolePurchaseManager, models.RoleCostController) {
		return
	}

	ctx := r.Context()
	product, ok := loadProduct(w, r, scope, productID)
	if !ok {
		return
	}

	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	code := strings.TrimSpace(payload.Code)
	description := strings.TrimSpace(payload.Description)
	if code == "" || description == "" {
		writeJSONError(w, http.StatusBadRequest, "code and description are required")
		return
	}
	if payload.CostPerUnit < 0 {
		writeJSONError(w, http.StatusBadRequest, "cost_per_unit must not be negative")
		return
	}

	updates := map[string]any{
		"code":                  code,
		"unique_item_number":    strings.TrimSpace(payload.UniqueItemNumber),
		"description":           description,
		"supplier":              strings.TrimSpace(payload.Supplier),
		"supplier_product_code": strings.TrimSpace(payload.SupplierProductCode),
		"category":              strings.TrimSpace(payload.Category),
		"sub_category":          strings.TrimSpace(payload.SubCategory),
		"item_level":            defaultString(payload.ItemLevel, "Primary"),
		"selling_unit":          defaultString(payload.SellingUnit, models.UnitML),
		"cost_per_unit":         payload.CostPerUnit,
		"ml_in_bottle":          payload.MlInBottle,
		"abv":                   payload.ABV,
		"purchase_type":         defaultString(payload.PurchaseType, models.PurchaseEach),
		"bottles_per_case":      payload.BottlesPerCase,
		"last_edited_by":        scope.UserID,
	}

	if err := database.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update product", "error", err, "id", productID)
		writeJSONError(w, http.StatusBadRequest, "unable to update product")
		return
	}

	if err := database.WithContext(ctx).First(product, productID).Error; err != nil {
		applog.Error(ctx, "failed to reload product after update", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated product")
		return
	}

	writeJSON(w, http.StatusOK, projectProduct(*product))
}

func deleteProduct(w http.ResponseWriter, r *http.Request, scope Scope, productID uint) {
	if !requireRole(w, r, scope, models.RoleManager, models.RolePurchaseManager, models.RoleCostController) {
		return
	}

	ctx := r.Context()
	product, ok := loadProduct(w, r, scope, productID)
	if !ok {
		return
	}

	// Ingredient lines keep their code snapshot, so a product recreated
	// under the same code will be re-linked by the costing engine.
	if err := database.WithContext(ctx).Delete(product).Error; err != nil {
		applog.Error(ctx, "failed to delete product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func loadProduct(w http.ResponseWriter, r *http.Request, scope Scope, productID uint) (*models.Product, bool) {
	ctx := r.Context()
	var product models.Product
	err := scopedQuery(database.WithContext(ctx), scope).First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		applog.Error(ctx, "failed to load product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return nil, false
	}
	return &product, true
}

func projectProduct(product models.Product) productResponse {
	return productResponse{
		ID:                  product.ID,
		Code:                product.Code,
		UniqueItemNumber:    product.UniqueItemNumber,
		Description:         product.Description,
		Supplier:            product.Supplier,
		SupplierProductCode: product.SupplierProductCode,
		Category:            product.Category,
		SubCategory:         product.SubCategory,
		ItemLevel:           product.ItemLevel,
		SellingUnit:         product.SellingUnit,
		CostPerUnit:         product.CostPerUnit,
		MlInBottle:          product.MlInBottle,
		ABV:                 product.ABV,
		PurchaseType:        product.PurchaseType,
		BottlesPerCase:      product.BottlesPerCase,
		CaseCost:            product.CaseCost(),
		Organisation:        product.Organisation,
		CreatedAt:           product.CreatedAt,
		UpdatedAt:           product.UpdatedAt,
	}
}

func defaultString(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
