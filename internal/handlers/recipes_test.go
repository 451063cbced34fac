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

// seedRecipeFixtures creates a vodka product, a sugar product, and a syrup
// homemade ingredient costing 0.0133 per ml.
func seedRecipeFixtures(t *testing.T, user models.User) (vodka models.Product, syrup models.HomemadeIngredient) {
	t.Helper()

	vodka = models.Product{
		Code:         "P-VODKA",
		Description:  "Absolut Vodka",
		SubCategory:  "Alcohol",
		SellingUnit:  models.UnitML,
		CostPerUnit:  0.10,
		Organisation: user.Organisation,
		CreatedBy:    user.ID,
	}
	sugar := models.Product{
		Code:         "P-SUGAR",
		Description:  "White Sugar",
		SellingUnit:  models.UnitGrams,
		CostPerUnit:  0.01,
		Organisation: user.Organisation,
		CreatedBy:    user.ID,
	}
	for _, p := range []*models.Product{&vodka, &sugar} {
		if err := database.Create(p).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	syrup = models.HomemadeIngredient{
		Name:          "Simple Syrup",
		Code:          "HM-SYRUP",
		TotalVolumeML: 750,
		Organisation:  user.Organisation,
		CreatedBy:     user.ID,
		Items: []models.HomemadeIngredientItem{
			{ProductID: &sugar.ID, Quantity: 1000, Unit: models.UnitGrams, ProductName: sugar.Description, ProductCode: sugar.Code},
		},
	}
	if err := database.Create(&syrup).Error; err != nil {
		t.Fatalf("failed to seed homemade ingredient: %v", err)
	}
	return vodka, syrup
}

func TestRecipeCreateSnapshotsIngredientNames(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	bartender := createTestUser(t, db, models.RoleBartender, "harbor-house")
	vodka, syrup := seedRecipeFixtures(t, bartender)

	payload := recipeRequest{
		Code:         "R-001",
		Title:        "Vodka Sour",
		RecipeType:   "beverage",
		SellingPrice: 54,
		Ingredients: []recipeIngredientRequest{
			{Kind: models.KindProduct, IngredientID: vodka.ID, Quantity: 50, Unit: models.UnitML},
			{Kind: models.KindHomemade, IngredientID: syrup.ID, Quantity: 30, Unit: models.UnitML},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/recipes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, bartender)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var response recipeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Ingredients) != 2 {
		t.Fatalf("len(Ingredients) = %d, want 2", len(response.Ingredients))
	}
	if response.Ingredients[0].IngredientName != "Absolut Vodka" || response.Ingredients[0].ProductCode != "P-VODKA" {
		t.Fatalf("expected product snapshot, got %+v", response.Ingredients[0])
	}
	if response.Ingredients[1].IngredientName != "Simple Syrup" {
		t.Fatalf("expected homemade name snapshot, got %+v", response.Ingredients[1])
	}

	// 50ml vodka at 0.10 is 5.00; 30ml syrup at 0.0133 is 0.40.
	if response.TotalCost != 5.40 {
		t.Fatalf("TotalCost = %v, want 5.40", response.TotalCost)
	}
	if response.CostPercentage == nil || *response.CostPercentage != 10.0 {
		t.Fatalf("CostPercentage = %v, want 10.0", response.CostPercentage)
	}
	if response.SellingPriceWithFees != 54 {
		t.Fatalf("SellingPriceWithFees = %v, want 54", response.SellingPriceWithFees)
	}
	if response.HasMissingCost {
		t.Fatal("expected no missing cost")
	}
}

func TestRecipeCreateRejectsUnknownIngredient(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	chef := createTestUser(t, db, models.RoleChef, "harbor-house")

	payload := recipeRequest{
		Title: "Ghost Recipe",
		Ingredients: []recipeIngredientRequest{
			{Kind: models.KindProduct, IngredientID: 999, Quantity: 10},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/recipes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, chef)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestRecipeCreateRejectsUnknownKind(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	chef := createTestUser(t, db, models.RoleChef, "harbor-house")

	payload := recipeRequest{
		Title: "Bad Kind",
		Ingredients: []recipeIngredientRequest{
			{Kind: "garnish", IngredientID: 1, Quantity: 10},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/recipes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, chef)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestRecipeWriteRoleDenied(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	purchaser := createTestUser(t, db, models.RolePurchaseManager, "harbor-house")

	payload := recipeRequest{Title: "Forbidden"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/recipes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, purchaser)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestRecipeCostEndpoint(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	bartender := createTestUser(t, db, models.RoleBartender, "harbor-house")
	vodka, _ := seedRecipeFixtures(t, bartender)

	recipe := models.Recipe{
		Code:         "R-010",
		Title:        "Vodka Neat",
		SellingPrice: 50,
		Organisation: bartender.Organisation,
		CreatedBy:    bartender.ID,
		Ingredients: []models.RecipeIngredient{
			{Kind: models.KindProduct, IngredientID: vodka.ID, Quantity: 50, Unit: models.UnitML, ProductCode: vodka.Code},
		},
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/recipes/%d/cost", recipe.ID), nil)
	req = authenticateRequest(t, sm, req, bartender)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response recipeCostResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.TotalCost != 5.0 {
		t.Fatalf("TotalCost = %v, want 5.0", response.TotalCost)
	}
	if response.CostPercentage == nil || *response.CostPercentage != 10.0 {
		t.Fatalf("CostPercentage = %v, want 10.0", response.CostPercentage)
	}
	if response.TotalDisplay != "AED 5.00" {
		t.Fatalf("TotalDisplay = %q", response.TotalDisplay)
	}
}

func TestRecipeBatchSummaryEndpoint(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	bartender := createTestUser(t, db, models.RoleBartender, "harbor-house")
	vodka, syrup := seedRecipeFixtures(t, bartender)

	recipe := models.Recipe{
		Code:         "R-020",
		Title:        "Vodka Sour",
		Organisation: bartender.Organisation,
		CreatedBy:    bartender.ID,
		Ingredients: []models.RecipeIngredient{
			{Kind: models.KindProduct, IngredientID: vodka.ID, Quantity: 50, Unit: models.UnitML},
			{Kind: models.KindHomemade, IngredientID: syrup.ID, Quantity: 30, Unit: models.UnitML},
		},
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/recipes/%d/batch-summary", recipe.ID), nil)
	req = authenticateRequest(t, sm, req, bartender)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response struct {
		ID      uint               `json:"id"`
		Summary map[string]float64 `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Summary["Alcohol"] != 50 {
		t.Fatalf("Alcohol = %v, want 50", response.Summary["Alcohol"])
	}
	if response.Summary["Syrups & Purees"] != 30 {
		t.Fatalf("Syrups & Purees = %v, want 30", response.Summary["Syrups & Purees"])
	}
	if len(response.Summary) != 8 {
		t.Fatalf("len(Summary) = %d, want all 8 categories present", len(response.Summary))
	}
}

func TestRecipeUpdateReplacesIngredients(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	chef := createTestUser(t, db, models.RoleChef, "harbor-house")
	vodka, syrup := seedRecipeFixtures(t, chef)

	recipe := models.Recipe{
		Code:         "R-030",
		Title:        "Old Version",
		Organisation: chef.Organisation,
		CreatedBy:    chef.ID,
		Ingredients: []models.RecipeIngredient{
			{Kind: models.KindProduct, IngredientID: vodka.ID, Quantity: 40, Unit: models.UnitML},
		},
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}

	payload := recipeRequest{
		Code:  "R-030",
		Title: "New Version",
		Ingredients: []recipeIngredientRequest{
			{Kind: models.KindHomemade, IngredientID: syrup.ID, Quantity: 20},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/recipes/%d", recipe.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, chef)
	w := httptest.NewRecorder()
	RecipeResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response recipeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Title != "New Version" {
		t.Fatalf("Title = %q", response.Title)
	}
	if len(response.Ingredients) != 1 || response.Ingredients[0].Kind != models.KindHomemade {
		t.Fatalf("expected replaced ingredient lines, got %+v", response.Ingredients)
	}

	var count int64
	if err := db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count lines: %v", err)
	}
	if count != 1 {
		t.Fatalf("stored line count = %d, want 1", count)
	}
}
