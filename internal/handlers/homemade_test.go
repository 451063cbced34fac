package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"barkeep/models"
)

func TestHomemadeIngredientCreateAndCost(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	chef := createTestUser(t, db, models.RoleChef, "harbor-house")

	sugar := models.Product{
		Code:         "P-SUGAR",
		Description:  "White Sugar",
		SellingUnit:  models.UnitGrams,
		CostPerUnit:  0.01,
		Organisation: chef.Organisation,
		CreatedBy:    chef.ID,
	}
	if err := db.Create(&sugar).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	payload := homemadeRequest{
		Name:          "Simple Syrup",
		Code:          "HM-001",
		TotalVolumeML: 750,
		Items: []homemadeItemRequest{
			{ProductID: &sugar.ID, Quantity: 1000, Unit: models.UnitGrams},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/homemade-ingredients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, chef)
	w := httptest.NewRecorder()
	HomemadeIngredientResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var response homemadeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(response.Items))
	}
	if response.Items[0].ProductName != "White Sugar" || response.Items[0].ProductCode != "P-SUGAR" {
		t.Fatalf("expected product snapshot on item, got %+v", response.Items[0])
	}
	if response.TotalCost != 10.0 {
		t.Fatalf("TotalCost = %v, want 10.0", response.TotalCost)
	}
	if response.CostPerUnit != 0.0133 {
		t.Fatalf("CostPerUnit = %v, want 0.0133", response.CostPerUnit)
	}
	if response.HasMissingCost {
		t.Fatal("expected no missing cost")
	}

	costReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/homemade-ingredients/%d/cost", response.ID), nil)
	costReq = authenticateRequest(t, sm, costReq, chef)
	costW := httptest.NewRecorder()
	HomemadeIngredientResource(costW, costReq)
	if costW.Code != http.StatusOK {
		t.Fatalf("expected status 200 for cost, got %d", costW.Code)
	}

	var cost homemadeCostResponse
	if err := json.Unmarshal(costW.Body.Bytes(), &cost); err != nil {
		t.Fatalf("failed to decode cost response: %v", err)
	}
	if cost.TotalCost != 10.0 || cost.CostPerUnit != 0.0133 {
		t.Fatalf("unexpected cost response: %+v", cost)
	}
	if cost.Currency != models.DefaultCurrency {
		t.Fatalf("Currency = %q, want %q", cost.Currency, models.DefaultCurrency)
	}
	if cost.TotalDisplay != "AED 10.00" {
		t.Fatalf("TotalDisplay = %q, want %q", cost.TotalDisplay, "AED 10.00")
	}
}

func TestHomemadeIngredientCreateValidation(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	chef := createTestUser(t, db, models.RoleChef, "harbor-house")

	payload := homemadeRequest{Name: "No Yield", TotalVolumeML: 0}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/homemade-ingredients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, chef)
	w := httptest.NewRecorder()
	HomemadeIngredientResource(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for zero yield, got %d", w.Code)
	}
}

func TestHomemadeIngredientWriteRoleDenied(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	purchaser := createTestUser(t, db, models.RolePurchaseManager, "harbor-house")

	payload := homemadeRequest{Name: "Syrup", TotalVolumeML: 100}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/homemade-ingredients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, purchaser)
	w := httptest.NewRecorder()
	HomemadeIngredientResource(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestHomemadeIngredientUpdateReplacesItems(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	bartender := createTestUser(t, db, models.RoleBartender, "harbor-house")

	lime := models.Product{Code: "P-LIME", Description: "Lime Juice", CostPerUnit: 0.02, Organisation: bartender.Organisation}
	mint := models.Product{Code: "P-MINT", Description: "Fresh Mint", CostPerUnit: 0.05, Organisation: bartender.Organisation}
	for _, p := range []*models.Product{&lime, &mint} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	ingredient := models.HomemadeIngredient{
		Name:          "Mint Cordial",
		Code:          "HM-010",
		TotalVolumeML: 500,
		Organisation:  bartender.Organisation,
		CreatedBy:     bartender.ID,
		Items: []models.HomemadeIngredientItem{
			{ProductID: &lime.ID, Quantity: 200, ProductName: lime.Description, ProductCode: lime.Code},
		},
	}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed homemade ingredient: %v", err)
	}

	payload := homemadeRequest{
		Name:          "Mint Cordial v2",
		Code:          "HM-010",
		TotalVolumeML: 600,
		Items: []homemadeItemRequest{
			{ProductID: &mint.ID, Quantity: 50},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/homemade-ingredients/%d", ingredient.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, bartender)
	w := httptest.NewRecorder()
	HomemadeIngredientResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response homemadeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Name != "Mint Cordial v2" || response.TotalVolumeML != 600 {
		t.Fatalf("unexpected update result: %+v", response)
	}
	if len(response.Items) != 1 || response.Items[0].ProductCode != "P-MINT" {
		t.Fatalf("expected replaced items, got %+v", response.Items)
	}

	var count int64
	if err := db.Model(&models.HomemadeIngredientItem{}).
		Where("homemade_ingredient_id = ?", ingredient.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if count != 1 {
		t.Fatalf("stored item count = %d, want 1", count)
	}
}

func TestHomemadeIngredientDeleteRemovesItems(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	manager := createTestUser(t, db, models.RoleManager, "harbor-house")

	ingredient := models.HomemadeIngredient{
		Name:          "Grenadine",
		Code:          "HM-020",
		TotalVolumeML: 400,
		Organisation:  manager.Organisation,
		CreatedBy:     manager.ID,
		Items: []models.HomemadeIngredientItem{
			{Quantity: 100, ProductName: "Pomegranate Juice", ProductCode: "P-POM"},
		},
	}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to seed homemade ingredient: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/homemade-ingredients/%d", ingredient.ID), nil)
	req = authenticateRequest(t, sm, req, manager)
	w := httptest.NewRecorder()
	HomemadeIngredientResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	var count int64
	if err := db.Model(&models.HomemadeIngredientItem{}).
		Where("homemade_ingredient_id = ?", ingredient.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected component lines to be deleted, found %d", count)
	}
}
