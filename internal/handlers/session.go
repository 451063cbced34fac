package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	applog "barkeep/internal/log"
	"barkeep/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserRoleKey      = "auth:user:role"
	sessionUserOrgKey       = "auth:user:organisation"
	sessionCurrencyKey      = "prefs:currency"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
}

// Scope carries the identity attributes every data query is filtered by.
// Handlers derive it from the session once per request and pass it down
// explicitly.
type Scope struct {
	UserID       uint
	Role         string
	Organisation string
	Currency     string
}

// EstablishSession records a verified identity in the session. The upstream
// identity layer calls this after authentication succeeds; nothing in this
// package checks credentials.
func EstablishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserRoleKey, user.Role)
	sessionManager.Put(r.Context(), sessionUserOrgKey, user.Organisation)
	currency := user.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	sessionManager.Put(r.Context(), sessionCurrencyKey, currency)
	return nil
}

// BeginSession is the handoff endpoint for the upstream identity layer.
// The reverse proxy in front of this service performs the actual credential
// check and posts the verified account reference here; the endpoint must not
// be reachable from outside that trust boundary.
func BeginSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	var payload struct {
		UserID uint   `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	var user models.User
	query := database.WithContext(r.Context())
	switch {
	case payload.UserID != 0:
		query = query.Where("id = ?", payload.UserID)
	case payload.Email != "":
		query = query.Where("email = ?", payload.Email)
	default:
		writeJSONError(w, http.StatusBadRequest, "user_id or email is required")
		return
	}
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "unknown user")
			return
		}
		applog.Error(r.Context(), "failed to load user for session handoff", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to establish session")
		return
	}

	if err := EstablishSession(r, &user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err, "user_id", user.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to establish session")
		return
	}

	applog.Info(r.Context(), "session established", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":      user.ID,
		"role":         user.Role,
		"organisation": user.Organisation,
	})
}

// ActiveSession returns true when the current request carries an
// authenticated session.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return false
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) &&
		sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}

func currentScope(r *http.Request) (Scope, bool) {
	if !ActiveSession(r) {
		return Scope{}, false
	}
	currency := sessionManager.GetString(r.Context(), sessionCurrencyKey)
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return Scope{
		UserID:       uint(sessionManager.GetInt(r.Context(), sessionUserIDKey)),
		Role:         sessionManager.GetString(r.Context(), sessionUserRoleKey),
		Organisation: sessionManager.GetString(r.Context(), sessionUserOrgKey),
		Currency:     currency,
	}, true
}

// RequireAuthentication rejects requests without an authenticated session.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActiveSession(r) {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logout destroys the current session.
func Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me reports the authenticated identity and preferences for the current
// session.
func Me(w http.ResponseWriter, r *http.Request) {
	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":      scope.UserID,
		"role":         scope.Role,
		"organisation": scope.Organisation,
		"currency":     scope.Currency,
	})
}

// requireRole writes a 403 and returns false unless the scope's role is one
// of the allowed roles.
func requireRole(w http.ResponseWriter, r *http.Request, scope Scope, roles ...string) bool {
	for _, role := range roles {
		if scope.Role == role {
			return true
		}
	}
	applog.Debug(r.Context(), "role denied", "role", scope.Role, "path", r.URL.Path)
	writeJSONError(w, http.StatusForbidden, "insufficient role")
	return false
}

// scopedQuery narrows a query to the caller's organisation, falling back to
// per-creator ownership for accounts without one.
func scopedQuery(db *gorm.DB, scope Scope) *gorm.DB {
	if scope.Organisation != "" {
		return db.Where("organisation = ?", scope.Organisation)
	}
	return db.Where("created_by = ?", scope.UserID)
}
