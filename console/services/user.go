package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"campusdata/console/auth"
	"campusdata/console/export"
	"campusdata/console/letter"
	"campusdata/console/schema"
	"campusdata/console/store"
	"campusdata/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	userSearchMetric  = promauto.NewSummary(prometheus.SummaryOpts{Name: "console_user_search", Help: "User roster searches"})
	spreadsheetMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "console_spreadsheet_export", Help: "Spreadsheet exports"})
	letterMetric      = promauto.NewSummary(prometheus.SummaryOpts{Name: "console_letter_render", Help: "Welcome letter renders"})
)

type UserService struct {
	store     *store.Store
	sessions  *auth.SessionManager
	accessLog auth.AccessLogger
}

func (s *UserService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(auth.Middlewares(s.sessions, s.accessLog)...)

	r.Get("/", s.List)
	r.Post("/", s.Create)
	r.Put("/{user_id}", s.Update)
	r.Delete("/{user_id}", s.Delete)
	r.Post("/delete", s.BulkDelete)

	r.Get("/export/spreadsheet", s.Spreadsheet)
	r.Post("/{user_id}/letter", s.Letter)

	return r
}

func (s *UserService) List(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(userSearchMetric)
	defer timer.ObserveDuration()

	query := r.URL.Query().Get("q")
	utils.WriteJsonResponse(w, s.store.SearchUsers(query))
}

func (s *UserService) Create(w http.ResponseWriter, r *http.Request) {
	session, err := auth.SessionFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params schema.PlatformUser
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	user, err := s.store.CreateUser(session.Username, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	slog.Info("created user", "user_id", user.Id, "login", user.Login)

	utils.WriteJsonResponse(w, user)
}

func (s *UserService) Update(w http.ResponseWriter, r *http.Request) {
	userId, err := utils.URLParam(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := auth.SessionFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params schema.PlatformUser
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	params.Id = userId

	if err := s.store.UpdateUser(session.Username, params); err != nil {
		if errors.Is(err, schema.ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	slog.Info("updated user", "user_id", userId)

	utils.WriteSuccess(w)
}

func (s *UserService) Delete(w http.ResponseWriter, r *http.Request) {
	userId, err := utils.URLParam(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := auth.SessionFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if removed := s.store.DeleteUsers(session.Username, []string{userId}); removed == 0 {
		http.Error(w, schema.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}

	slog.Info("deleted user", "user_id", userId)

	utils.WriteSuccess(w)
}

type bulkDeleteRequest struct {
	UserIds []string `json:"userIds"`
}

type bulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

// BulkDelete removes the selected users in one step. Ids that no longer
// exist are skipped, the response reports how many were actually removed.
func (s *UserService) BulkDelete(w http.ResponseWriter, r *http.Request) {
	session, err := auth.SessionFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params bulkDeleteRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	removed := s.store.DeleteUsers(session.Username, params.UserIds)

	slog.Info("bulk deleted users", "requested", len(params.UserIds), "deleted", removed)

	utils.WriteJsonResponse(w, bulkDeleteResponse{Deleted: removed})
}

func (s *UserService) Spreadsheet(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(spreadsheetMetric)
	defer timer.ObserveDuration()

	data, err := export.Spreadsheet(s.store.Users(), s.store.RoleDefinitions())
	if err != nil {
		slog.Error("error rendering spreadsheet export", "error", err)
		http.Error(w, fmt.Sprintf("error rendering spreadsheet export: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteAttachment(w, "nutzer.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

type letterRequest struct {
	// Background selects the letterhead source: "url" fetches the default
	// stationery, "upload" uses the image field, "none" renders plain white.
	Background string `json:"background"`
	Image      string `json:"image,omitempty"`
}

func (s *UserService) letterBackground(r *http.Request, params letterRequest) ([]byte, error) {
	switch params.Background {
	case "url":
		background, err := letter.FetchBackground(r.Context(), letter.DefaultLetterheadURL)
		if err != nil {
			slog.Error("error fetching letterhead", "error", err)
			return nil, CodedError(err, http.StatusBadGateway)
		}
		return background, nil
	case "upload":
		background, err := base64.StdEncoding.DecodeString(params.Image)
		if err != nil {
			return nil, CodedError(fmt.Errorf("error decoding letterhead image: %w", err), http.StatusUnprocessableEntity)
		}
		if len(background) == 0 {
			return nil, CodedError(fmt.Errorf("letterhead image must not be empty"), http.StatusUnprocessableEntity)
		}
		return background, nil
	case "none", "":
		return nil, nil
	default:
		return nil, CodedError(fmt.Errorf("invalid background mode '%v'", params.Background), http.StatusUnprocessableEntity)
	}
}

func (s *UserService) Letter(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(letterMetric)
	defer timer.ObserveDuration()

	userId, err := utils.URLParam(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := s.store.GetUser(userId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var params letterRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	background, err := s.letterBackground(r, params)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	data, err := letter.Generate(user, background)
	if err != nil {
		slog.Error("error rendering welcome letter", "user_id", userId, "error", err)
		http.Error(w, fmt.Sprintf("error rendering welcome letter: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteAttachment(w, letter.Filename(user), "application/pdf", data)
}
