package services

import (
	"net/http"

	"campusdata/console/auth"
	"campusdata/console/store"
	"campusdata/utils"

	"github.com/go-chi/chi/v5"
)

type LogService struct {
	store     *store.Store
	sessions  *auth.SessionManager
	accessLog auth.AccessLogger
}

func (s *LogService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(auth.Middlewares(s.sessions, s.accessLog)...)
	r.Use(auth.MasterOnly())

	r.Get("/", s.List)

	return r
}

// List returns the audit trail, newest entry first.
func (s *LogService) List(w http.ResponseWriter, r *http.Request) {
	utils.WriteJsonResponse(w, s.store.AuditLogs())
}
