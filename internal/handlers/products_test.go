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

func TestProductCreateAutoCategorizes(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	db := database
	manager := createTestUser(t, db, models.RoleManager, "harbor-house")

	payload := productRequest{
		Code:        "P-100",
		Description: "Absolut Vodka 750ml",
		CostPerUnit: 0.12,
		MlInBottle:  750,
		SellingUnit: "bottle",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, manager)
	w := httptest.NewRecorder()
	ProductResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var response productResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Category != "Beverage" || response.SubCategory != "Vodka" {
		t.Fatalf("expected auto-categorization, got %q/%q", response.Category, response.SubCategory)
	}
	if response.Organisation != "harbor-house" {
		t.Fatalf("organisation = %q", response.Organisation)
	}
	if response.BottlesPerCase != 1 {
		t.Fatalf("BottlesPerCase = %d, want default 1", response.BottlesPerCase)
	}
}

func TestProductCreateRoleDenied(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	bartender := createTestUser(t, database, models.RoleBartender, "harbor-house")

	payload := productRequest{Code: "P-101", Description: "Lime Juice", CostPerUnit: 0.01}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, bartender)
	w := httptest.NewRecorder()
	ProductResource(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestProductCreateValidation(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	manager := createTestUser(t, database, models.RoleManager, "harbor-house")

	tests := []struct {
		name    string
		payload productRequest
	}{
		{name: "missing code", payload: productRequest{Description: "Thing", CostPerUnit: 1}},
		{name: "missing description", payload: productRequest{Code: "P-1", CostPerUnit: 1}},
		{name: "negative cost", payload: productRequest{Code: "P-1", Description: "Thing", CostPerUnit: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req = authenticateRequest(t, sm, req, manager)
			w := httptest.NewRecorder()
			ProductResource(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestProductListScopedToOrganisation(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	mine := createTestUser(t, db, models.RoleManager, "harbor-house")
	other := createTestUser(t, db, models.RoleManager, "dockside")

	seed := []models.Product{
		{Code: "P-1", Description: "Gin", CostPerUnit: 0.1, Organisation: mine.Organisation, CreatedBy: mine.ID},
		{Code: "P-2", Description: "Rum", CostPerUnit: 0.1, Organisation: other.Organisation, CreatedBy: other.ID},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req = authenticateRequest(t, sm, req, mine)
	w := httptest.NewRecorder()
	ProductResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response []productResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("len(response) = %d, want 1", len(response))
	}
	if response[0].Code != "P-1" {
		t.Fatalf("Code = %q, want P-1", response[0].Code)
	}
}

func TestProductUpdateAndDelete(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	manager := createTestUser(t, db, models.RoleManager, "harbor-house")

	product := models.Product{
		Code:         "P-200",
		Description:  "Simple Syrup",
		CostPerUnit:  0.02,
		Organisation: manager.Organisation,
		CreatedBy:    manager.ID,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	payload := productRequest{
		Code:        "P-200",
		Description: "Simple Syrup 1:1",
		CostPerUnit: 0.03,
		SellingUnit: models.UnitML,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/products/%d", product.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = authenticateRequest(t, sm, req, manager)
	w := httptest.NewRecorder()
	ProductResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for update, got %d: %s", w.Code, w.Body.String())
	}

	var response productResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Description != "Simple Syrup 1:1" || response.CostPerUnit != 0.03 {
		t.Fatalf("unexpected update result: %+v", response)
	}

	deleteReq := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/products/%d", product.ID), nil)
	deleteReq = authenticateRequest(t, sm, deleteReq, manager)
	deleteW := httptest.NewRecorder()
	ProductResource(deleteW, deleteReq)
	if deleteW.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 for delete, got %d", deleteW.Code)
	}

	var count int64
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count products: %v", err)
	}
	if count != 0 {
		t.Fatal("expected deleted product to be excluded from default queries")
	}
}

func TestProductShowNotFoundAcrossOrganisations(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	owner := createTestUser(t, db, models.RoleManager, "harbor-house")
	outsider := createTestUser(t, db, models.RoleManager, "dockside")

	product := models.Product{
		Code:         "P-300",
		Description:  "House Bitters",
		CostPerUnit:  0.5,
		Organisation: owner.Organisation,
		CreatedBy:    owner.ID,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/products/%d", product.ID), nil)
	req = authenticateRequest(t, sm, req, outsider)
	w := httptest.NewRecorder()
	ProductResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}
