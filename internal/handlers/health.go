package handlers

import "net/http"

// Healthz reports process liveness and database connectivity.
func Healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := "ok"
	code := http.StatusOK
	if database == nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else if sqlDB, err := database.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]string{"status": status})
}
