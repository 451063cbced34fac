package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	applog "barkeep/internal/log"
	"barkeep/internal/money"
	"barkeep/models"
)

type preferencesPayload struct {
	Currency string `json:"currency"`
}

// Preferences reads and updates the per-user display preferences. The chosen
// currency is persisted on the account and mirrored into the session so the
// change takes effect immediately.
func Preferences(w http.ResponseWriter, r *http.Request) {
	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"currency": scope.Currency,
		})
	case http.MethodPut:
		updatePreferences(w, r, scope)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func updatePreferences(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var payload preferencesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(payload.Currency))
	if !money.Supported(currency) {
		writeJSONError(w, http.StatusBadRequest, "unsupported currency")
		return
	}

	if database != nil {
		err := database.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", scope.UserID).
			Update("currency", currency).Error
		if err != nil {
			applog.Error(ctx, "failed to persist currency preference", "error", err,
				"user_id", scope.UserID, "currency", currency)
			writeJSONError(w, http.StatusInternalServerError, "unable to update preferences")
			return
		}
	}

	sessionManager.Put(ctx, sessionCurrencyKey, currency)
	writeJSON(w, http.StatusOK, map[string]any{
		"currency": currency,
	})
}
