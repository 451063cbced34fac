package server

import (
	"context"
	"net/http"

	"barkeep/internal/handlers"
	applog "barkeep/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Healthz)
	mux.HandleFunc("/auth/session", handlers.BeginSession)
	mux.HandleFunc("/auth/logout", handlers.Logout)

	protect := func(h http.HandlerFunc) http.Handler {
		return handlers.RequireAuthentication(h)
	}

	mux.Handle("/api/me", protect(handlers.Me))
	mux.Handle("/api/preferences", protect(handlers.Preferences))

	mux.Handle("/api/products", protect(handlers.ProductResource))
	mux.Handle("/api/products/", protect(handlers.ProductResource))
	mux.Handle("/api/homemade-ingredients", protect(handlers.HomemadeIngredientResource))
	mux.Handle("/api/homemade-ingredients/", protect(handlers.HomemadeIngredientResource))
	mux.Handle("/api/recipes", protect(handlers.RecipeResource))
	mux.Handle("/api/recipes/", protect(handlers.RecipeResource))
	mux.Handle("/api/purchase-requests", protect(handlers.PurchaseRequestResource))
	mux.Handle("/api/purchase-requests/", protect(handlers.PurchaseRequestResource))
	mux.Handle("/api/books", protect(handlers.BookResource))
	mux.Handle("/api/books/", protect(handlers.BookResource))

	mux.Handle("/api/compliance/temperature-logs", protect(handlers.TemperatureLogResource))
	mux.Handle("/api/compliance/checklist", protect(handlers.ChecklistResource))
	mux.HandleFunc("/api/compliance/", handlers.ComplianceNotFound)

	applog.Debug(context.Background(), "http routes registered")
	return mux
}
