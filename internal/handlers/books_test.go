package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"barkeep/models"
)

func seedLibrary(t *testing.T, organisation string) (bartender models.Book, chef models.Book) {
	t.Helper()
	bartender = models.Book{
		Title:        "The Craft of the Cocktail",
		LibraryType:  models.LibraryBartender,
		PDFPath:      "uploads/books/cocktail.pdf",
		PageCount:    250,
		Organisation: organisation,
	}
	chef = models.Book{
		Title:        "On Food and Cooking",
		LibraryType:  models.LibraryChef,
		PDFPath:      "uploads/books/cooking.pdf",
		PageCount:    880,
		Organisation: organisation,
	}
	for _, book := range []*models.Book{&bartender, &chef} {
		if err := database.Create(book).Error; err != nil {
			t.Fatalf("failed to seed book: %v", err)
		}
	}
	return bartender, chef
}

func TestBookListFilteredByRole(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	seedLibrary(t, "harbor-house")

	tests := []struct {
		role       string
		wantTitles []string
	}{
		{role: models.RoleBartender, wantTitles: []string{"The Craft of the Cocktail"}},
		{role: models.RoleChef, wantTitles: []string{"On Food and Cooking"}},
		{role: models.RoleChefManager, wantTitles: []string{"On Food and Cooking"}},
		{role: models.RoleManager, wantTitles: []string{"On Food and Cooking", "The Craft of the Cocktail"}},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			user := createTestUser(t, db, tc.role, "harbor-house")
			req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
			req = authenticateRequest(t, sm, req, user)
			w := httptest.NewRecorder()
			BookResource(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}

			var response []bookResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response) != len(tc.wantTitles) {
				t.Fatalf("len(response) = %d, want %d", len(response), len(tc.wantTitles))
			}
			for i, want := range tc.wantTitles {
				if response[i].Title != want {
					t.Fatalf("response[%d].Title = %q, want %q", i, response[i].Title, want)
				}
			}
		})
	}
}

func TestBookShowHiddenShelfNotFound(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	_, chefBook := seedLibrary(t, "harbor-house")
	bartender := createTestUser(t, db, models.RoleBartender, "harbor-house")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/books/%d", chefBook.ID), nil)
	req = authenticateRequest(t, sm, req, bartender)
	w := httptest.NewRecorder()
	BookResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for hidden shelf, got %d", w.Code)
	}
}

func TestBookCreateRequiresManager(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	bartender := createTestUser(t, db, models.RoleBartender, "harbor-house")

	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req = authenticateRequest(t, sm, req, bartender)
	w := httptest.NewRecorder()
	BookResource(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestBookDeleteRemovesRow(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	bartenderBook, _ := seedLibrary(t, "harbor-house")
	manager := createTestUser(t, db, models.RoleManager, "harbor-house")

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/books/%d", bartenderBook.ID), nil)
	req = authenticateRequest(t, sm, req, manager)
	w := httptest.NewRecorder()
	BookResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	var count int64
	if err := db.Model(&models.Book{}).Where("id = ?", bartenderBook.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count books: %v", err)
	}
	if count != 0 {
		t.Fatal("expected deleted book to be excluded from default queries")
	}
}
