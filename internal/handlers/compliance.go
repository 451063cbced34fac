package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "barkeep/internal/log"
	"barkeep/models"
)

const (
	temperatureLogsPathPrefix = "/api/compliance/temperature-logs"
	checklistPathPrefix       = "/api/compliance/checklist"
)

type temperatureLogRequest struct {
	Area         string  `json:"area"`
	Equipment    string  `json:"equipment"`
	TemperatureC float64 `json:"temperature_c"`
	MinC         float64 `json:"min_c"`
	MaxC         float64 `json:"max_c"`
	Note         string  `json:"note"`
}

type checklistEntryRequest struct {
	Area      string `json:"area"`
	Item      string `json:"item"`
	Completed bool   `json:"completed"`
	Note      string `json:"note"`
}

// areaRoles lists who may record entries for each compliance area. Managers
// record anywhere.
var areaRoles = map[string][]string{
	models.AreaBar:     {models.RoleBartender, models.RoleManager},
	models.AreaKitchen: {models.RoleChef, models.RoleChefManager, models.RoleManager},
}

// TemperatureLogResource records and lists HACCP temperature readings.
func TemperatureLogResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segments := resourcePath(r, temperatureLogsPathPrefix)
	if len(segments) != 0 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		listTemperatureLogs(w, r, scope)
	case http.MethodPost:
		createTemperatureLog(w, r, scope)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// complianceScope mirrors scopedQuery for the compliance tables, whose
// ownership column differs per table.
func complianceScope(db *gorm.DB, scope Scope, ownerColumn string) *gorm.DB {
	if scope.Organisation != "" {
		return db.Where("organisation = ?", scope.Organisation)
	}
	return db.Where(ownerColumn+" = ?", scope.UserID)
}

func listTemperatureLogs(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	query := complianceScope(database.WithContext(ctx), scope, "recorded_by").Order("recorded_at desc")
	if area := strings.TrimSpace(r.URL.Query().Get("area")); area != "" {
		query = query.Where("area = ?", area)
	}

	var logs []models.TemperatureLog
	if err := query.Find(&logs).Error; err != nil {
		applog.Error(ctx, "failed to list temperature logs", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load temperature logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func createTemperatureLog(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var payload temperatureLogRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	area := strings.ToLower(strings.TrimSpace(payload.Area))
	roles, known := areaRoles[area]
	if !known {
		writeJSONError(w, http.StatusBadRequest, "area must be bar or kitchen")
		return
	}
	if !requireRole(w, r, scope, roles...) {
		return
	}

	equipment := strings.TrimSpace(payload.Equipment)
	if equipment == "" {
		writeJSONError(w, http.StatusBadRequest, "equipment is required")
		return
	}
	if payload.MaxC < payload.MinC {
		writeJSONError(w, http.StatusBadRequest, "max_c must not be below min_c")
		return
	}

	entry := models.TemperatureLog{
		Area:         area,
		Equipment:    equipment,
		TemperatureC: payload.TemperatureC,
		MinC:         payload.MinC,
		MaxC:         payload.MaxC,
		OutOfRange:   payload.TemperatureC < payload.MinC || payload.TemperatureC > payload.MaxC,
		Note:         strings.TrimSpace(payload.Note),
		RecordedBy:   scope.UserID,
		RecordedAt:   time.Now().UTC(),
		Organisation: scope.Organisation,
	}

	if err := database.WithContext(ctx).Create(&entry).Error; err != nil {
		applog.Error(ctx, "failed to record temperature log", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to record temperature log")
		return
	}

	if entry.OutOfRange {
		applog.Info(ctx, "temperature reading out of range",
			"area", entry.Area,
			"equipment", entry.Equipment,
			"temperature_c", entry.TemperatureC,
			"min_c", entry.MinC,
			"max_c", entry.MaxC)
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ChecklistResource records and lists daily checklist completions.
func ChecklistResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segments := resourcePath(r, checklistPathPrefix)
	if len(segments) != 0 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		listChecklistEntries(w, r, scope)
	case http.MethodPost:
		createChecklistEntry(w, r, scope)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listChecklistEntries(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	query := complianceScope(database.WithContext(ctx), scope, "completed_by").Order("completed_at desc")
	if area := strings.TrimSpace(r.URL.Query().Get("area")); area != "" {
		query = query.Where("area = ?", area)
	}

	var entries []models.ChecklistEntry
	if err := query.Find(&entries).Error; err != nil {
		applog.Error(ctx, "failed to list checklist entries", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load checklist entries")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func createChecklistEntry(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var payload checklistEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	area := strings.ToLower(strings.TrimSpace(payload.Area))
	roles, known := areaRoles[area]
	if !known {
		writeJSONError(w, http.StatusBadRequest, "area must be bar or kitchen")
		return
	}
	if !requireRole(w, r, scope, roles...) {
		return
	}

	item := strings.TrimSpace(payload.Item)
	if item == "" {
		writeJSONError(w, http.StatusBadRequest, "item is required")
		return
	}

	entry := models.ChecklistEntry{
		Area:         area,
		Item:         item,
		Completed:    payload.Completed,
		Note:         strings.TrimSpace(payload.Note),
		CompletedBy:  scope.UserID,
		CompletedAt:  time.Now().UTC(),
		Organisation: scope.Organisation,
	}

	if err := database.WithContext(ctx).Create(&entry).Error; err != nil {
		applog.Error(ctx, "failed to record checklist entry", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to record checklist entry")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// ComplianceNotFound keeps unknown /api/compliance/ paths from falling
// through to the root handler.
func ComplianceNotFound(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}
