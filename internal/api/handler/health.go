package handler

import (
	"net/http"

	"github.com/sereno-app/sereno-api/internal/api/response"
	"github.com/sereno-app/sereno-api/internal/repository/mongo"
	"github.com/sereno-app/sereno-api/internal/repository/postgres"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including datastore connectivity
func ReadyCheck(db *postgres.DB, mongoClient *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}
		if err := mongoClient.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "document store not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
