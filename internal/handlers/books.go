package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"gorm.io/gorm"

	applog "barkeep/internal/log"
	"barkeep/models"
)

const booksPathPrefix = "/api/books"

const maxBookUploadBytes = 64 << 20

// uploadRoot is where uploaded PDFs and cover images land. Overridden at
// startup via ConfigureStorage.
var uploadRoot = "uploads"

// ConfigureStorage sets the directory used for uploaded files.
func ConfigureStorage(dir string) {
	if strings.TrimSpace(dir) != "" {
		uploadRoot = dir
	}
}

type bookResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	LibraryType    string    `json:"library_type"`
	CoverImagePath string    `json:"cover_image_path"`
	PageCount      int       `json:"page_count"`
	Organisation   string    `json:"organisation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BookResource handles the knowledge library. Which shelf a user sees is
// decided by role; managers browse both.
func BookResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segments := resourcePath(r, booksPathPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listBooks(w, r, scope)
		case http.MethodPost:
			createBook(w, r, scope)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	bookID, ok := parseID(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}

	if len(segments) > 1 {
		if segments[1] == "file" && r.Method == http.MethodGet {
			serveBookFile(w, r, scope, bookID)
			return
		}
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showBook(w, r, scope, bookID)
	case http.MethodDelete:
		deleteBook(w, r, scope, bookID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// visibleLibraries maps a role to the shelves it may browse.
func visibleLibraries(role string) []string {
	switch role {
	case models.RoleBartender:
		return []string{models.LibraryBartender}
	case models.RoleChef, models.RoleChefManager:
		return []string{models.LibraryChef}
	default:
		return []string{models.LibraryBartender, models.LibraryChef}
	}
}

func listBooks(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var books []models.Book
	query := scopedQuery(database.WithContext(ctx), scope).
		Where("library_type IN ?", visibleLibraries(scope.Role)).
		Order("title asc")
	if err := query.Find(&books).Error; err != nil {
		applog.Error(ctx, "failed to list books", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load books")
		return
	}

	responses := make([]bookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, projectBook(book))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createBook(w http.ResponseWriter, r *http.Request, scope Scope) {
	if !requireRole(w, r, scope, models.RoleManager) {
		return
	}

	ctx := r.Context()
	if err := r.ParseMultipartForm(maxBookUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeJSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	libraryType := strings.TrimSpace(r.FormValue("library_type"))
	if libraryType != models.LibraryBartender && libraryType != models.LibraryChef {
		writeJSONError(w, http.StatusBadRequest, "library_type must be bartender or chef")
		return
	}

	file, _, err := r.FormFile("pdf")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "pdf file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBookUploadBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "unable to read pdf file")
		return
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "uploaded file is not a readable PDF")
		return
	}

	pdfPath, err := storeUpload("books", ".pdf", data)
	if err != nil {
		applog.Error(ctx, "failed to store book pdf", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to store pdf file")
		return
	}

	coverPath := ""
	if cover, header, err := r.FormFile("cover"); err == nil {
		defer cover.Close()
		coverData, err := io.ReadAll(io.LimitReader(cover, maxBookUploadBytes))
		if err == nil {
			ext := strings.ToLower(filepath.Ext(header.Filename))
			if ext == "" {
				ext = ".jpg"
			}
			if path, err := storeUpload("covers", ext, coverData); err == nil {
				coverPath = path
			}
		}
	}

	book := models.Book{
		Title:          title,
		Author:         strings.TrimSpace(r.FormValue("author")),
		LibraryType:    libraryType,
		PDFPath:        pdfPath,
		CoverImagePath: coverPath,
		PageCount:      reader.NumPage(),
		Organisation:   scope.Organisation,
		CreatedBy:      scope.UserID,
	}

	if err := database.WithContext(ctx).Create(&book).Error; err != nil {
		applog.Error(ctx, "failed to create book", "error", err, "title", title)
		writeJSONError(w, http.StatusInternalServerError, "unable to create book")
		return
	}

	applog.Info(ctx, "book added to library",
		"title", title,
		"library_type", libraryType,
		"pages", book.PageCount)
	writeJSON(w, http.StatusCreated, projectBook(book))
}

func showBook(w http.ResponseWriter, r *http.Request, scope Scope, bookID uint) {
	book, ok := loadBook(w, r, scope, bookID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectBook(*book))
}

func serveBookFile(w http.ResponseWriter, r *http.Request, scope Scope, bookID uint) {
	book, ok := loadBook(w, r, scope, bookID)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, book.PDFPath)
}

func deleteBook(w http.ResponseWriter, r *http.Request, scope Scope, bookID uint) {
	if !requireRole(w, r, scope, models.RoleManager) {
		return
	}

	ctx := r.Context()
	book, ok := loadBook(w, r, scope, bookID)
	if !ok {
		return
	}

	if err := database.WithContext(ctx).Delete(book).Error; err != nil {
		applog.Error(ctx, "failed to delete book", "error", err, "id", bookID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete book")
		return
	}

	// Remove the stored files after the row is gone; a leftover file is
	// harmless, a dangling row is not.
	if book.PDFPath != "" {
		if err := os.Remove(book.PDFPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			applog.Debug(ctx, "failed to remove book pdf", "error", err, "path", book.PDFPath)
		}
	}
	if book.CoverImagePath != "" {
		if err := os.Remove(book.CoverImagePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			applog.Debug(ctx, "failed to remove cover image", "error", err, "path", book.CoverImagePath)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func loadBook(w http.ResponseWriter, r *http.Request, scope Scope, bookID uint) (*models.Book, bool) {
	ctx := r.Context()
	var book models.Book
	err := scopedQuery(database.WithContext(ctx), scope).
		Where("library_type IN ?", visibleLibraries(scope.Role)).
		First(&book, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		applog.Error(ctx, "failed to load book", "error", err, "id", bookID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load book")
		return nil, false
	}
	return &book, true
}

func storeUpload(kind, ext string, data []byte) (string, error) {
	dir := filepath.Join(uploadRoot, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func projectBook(book models.Book) bookResponse {
	return bookResponse{
		ID:             book.ID,
		Title:          book.Title,
		Author:         book.Author,
		LibraryType:    book.LibraryType,
		CoverImagePath: book.CoverImagePath,
		PageCount:      book.PageCount,
		Organisation:   book.Organisation,
		CreatedAt:      book.CreatedAt,
		UpdatedAt:      book.UpdatedAt,
	}
}
