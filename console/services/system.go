package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"campusdata/console/auth"
	"campusdata/console/export"
	"campusdata/console/schema"
	"campusdata/console/store"
	"campusdata/utils"

	"github.com/go-chi/chi/v5"
)

type SystemService struct {
	store     *store.Store
	sessions  *auth.SessionManager
	accessLog auth.AccessLogger
}

func (s *SystemService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.Middlewares(s.sessions, s.accessLog)...)

		r.Post("/profile", s.UpdateProfile)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middlewares(s.sessions, s.accessLog)...)
		r.Use(auth.MasterOnly())

		r.Get("/backup", s.ExportBackup)
		r.Post("/backup/import", s.ImportBackup)

		r.Get("/structure", s.ExportStructure)
		r.Post("/structure/import", s.ImportStructure)

		r.Get("/visibility", s.GetVisibility)
		r.Put("/visibility", s.SetVisibility)

		r.Get("/roles", s.ListRoles)
		r.Post("/roles", s.CreateRole)
		r.Put("/roles/{role_id}", s.UpdateRole)
		r.Delete("/roles/{role_id}", s.DeleteRole)

		r.Get("/categories", s.ListCategories)
		r.Post("/categories", s.CreateCategory)
		r.Put("/categories/{category_id}", s.UpdateCategory)
		r.Delete("/categories/{category_id}", s.DeleteCategory)

		r.Get("/editors", s.ListEditors)
		r.Post("/editors", s.CreateEditor)
		r.Put("/editors/{editor_id}", s.UpdateEditor)
		r.Delete("/editors/{editor_id}", s.DeleteEditor)
	})

	return r
}

// --- Backup ---

func (s *SystemService) ExportBackup(w http.ResponseWriter, r *http.Request) {
	bundle := s.store.ExportBundle()

	data, err := json.Marshal(bundle)
	if err != nil {
		slog.Error("error encoding backup bundle", "error", err)
		http.Error(w, fmt.Sprintf("error encoding backup bundle: %v", err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("campusdata_backup_%v.json", time.Now().Format("2006-01-02"))
	utils.WriteAttachment(w, filename, "application/json", data)
}

type backupSummary struct {
	Timestamp       string `json:"timestamp"`
	Users           int    `json:"users"`
	RoleDefinitions int    `json:"roleDefinitions"`
	Editors         int    `json:"editors"`
	Categories      int    `json:"categories"`
	AuditLogs       int    `json:"auditLogs"`
	HasVisibility   bool   `json:"hasVisibilityConfig"`
	HasMasterCreds  bool   `json:"hasCustomMasterCreds"`
	RequiresConfirm bool   `json:"requiresConfirm"`
}

func collectionLen[T any](collection *[]T) int {
	if collection == nil {
		return 0
	}
	return len(*collection)
}

// ImportBackup restores a backup bundle. The restore overwrites present
// collections wholesale, so it runs in two steps: without ?confirm=true the
// bundle is only validated and summarized, with it the restore is applied.
func (s *SystemService) ImportBackup(w http.ResponseWriter, r *http.Request) {
	session, err := auth.SessionFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("error reading backup file: %v", err), http.StatusBadRequest)
		return
	}

	bundle, err := export.ParseBundle(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		utils.WriteJsonResponse(w, backupSummary{
			Timestamp:       bundle.Timestamp,
			Users:           collectionLen(bundle.Users),
			RoleDefinitions: collectionLen(bundle.RoleDefinitions),
			Editors:         collectionLen(bundle.Editors),
			Categories:      collectionLen(bundle.Categories),
			AuditLogs:       collectionLen(bundle.AuditLogs),
			HasVisibility:   bundle.VisibilityConfig != nil,
			HasMasterCreds:  bundle.CustomMasterCreds != nil,
			RequiresConfirm: true,
		})
		return
	}

	s.store.ImportBundle(session.Username, bundle)

	slog.Info("restored backup", "users", collectionLen(bundle.Users), "roles", collectionLen(bundle.RoleDefinitions))

	utils.WriteSuccess(w)
}

// --- Role structure ---

func (s *SystemService) ExportStructure(w http.ResponseWriter, r *http.Request) {
	structure := s.store.ExportRoleStructure()

	data, err := json.Marshal(structure)
	if err != nil {
		slog.Error("error encoding role structure", "error", err)
		http.Error(w, fmt.Sprintf("error encoding role structure: %v", err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("kurs_struktur_%v.json", time.Now().Format("2006-01-02"))
	utils.WriteAttachment(w, filename, "application/json", data)
}

type importStructureResponse struct {
	Imported int `json:"imported"`
}

type structureSummary struct {
	Roles           int  `json:"roles"`
	RequiresConfirm bool `json:"requiresConfirm"`
}

// ImportStructure replaces the role definition collection from a structure
// file. Like the backup restore it overwrites wholesale, so it runs in two
// steps: without ?confirm=true the file is only validated and summarized,
// with it the replacement is applied.
func (s *SystemService) ImportStructure(w http.ResponseWriter, r *http.Request) {
	session, err := auth.SessionFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("error reading structure file: %v", err), http.StatusBadRequest)
		return
	}

	roles, err := export.ParseRoleStructure(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if r.URL.Query().Get("confirm") != "true" {
		utils.WriteJsonResponse(w, structureSummary{Roles: len(roles), RequiresConfirm: true})
		return
	}

	s.store.ReplaceRoleDefinitions(session.Username, roles)

	slog.Info("imported role structure", "roles", len(roles))

	utils.WriteJsonResponse(w, importStructureResponse{Imported: len(roles)})
}

// --- Field visibility ---

func (s *SystemService) GetVisibility(w http.ResponseWriter, r *http.Request) {
	utils.WriteJsonResponse(w, s.store.Visibility())
}

func (s *SystemService) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var params schema.FieldVisibilityConfig
	if !utils.ParseStrictRequestBody(w, r, &params) {
		return
	}

	s.store.SetVisibility(params)

	utils.WriteSuccess(w)
}

// --- Role definitions ---

func (s *SystemService) ListRoles(w http.ResponseWriter, r *http.Request) {
	utils.WriteJsonResponse(w, s.store.RoleDefinitions())
}

func (s *SystemService) CreateRole(w http.ResponseWriter, r *http.Request) {
	var params schema.ObjectRoleDefinition
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	utils.WriteJsonResponse(w, s.store.CreateRoleDefinition(params))
}

func (s *SystemService) UpdateRole(w http.ResponseWriter, r *http.Request) {
	roleId, err := utils.URLParam(r, "role_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params schema.ObjectRoleDefinition
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	params.Id = roleId

	if err := s.store.UpdateRoleDefinition(params); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}

func (s *SystemService) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleId, err := utils.URLParam(r, "role_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteRoleDefinition(roleId); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}

// --- Categories ---

func (s *SystemService) ListCategories(w http.ResponseWriter, r *http.Request) {
	utils.WriteJsonResponse(w, s.store.Categories())
}

func (s *SystemService) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var params schema.CategoryDefinition
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	utils.WriteJsonResponse(w, s.store.CreateCategory(params))
}

func (s *SystemService) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryId, err := utils.URLParam(r, "category_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params schema.CategoryDefinition
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	params.Id = categoryId

	if err := s.store.UpdateCategory(params); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}

func (s *SystemService) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryId, err := utils.URLParam(r, "category_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteCategory(categoryId); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}

// --- Editors ---

func (s *SystemService) ListEditors(w http.ResponseWriter, r *http.Request) {
	utils.WriteJsonResponse(w, s.store.Editors())
}

func (s *SystemService) CreateEditor(w http.ResponseWriter, r *http.Request) {
	var params schema.AppEditor
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Username == "" || params.Password == "" {
		http.Error(w, "editor username and password must not be empty", http.StatusUnprocessableEntity)
		return
	}
	params.Active = true

	utils.WriteJsonResponse(w, s.store.CreateEditor(params))
}

func (s *SystemService) UpdateEditor(w http.ResponseWriter, r *http.Request) {
	editorId, err := utils.URLParam(r, "editor_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params schema.AppEditor
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}
	params.Id = editorId

	if err := s.store.UpdateEditor(params); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}

func (s *SystemService) DeleteEditor(w http.ResponseWriter, r *http.Request) {
	editorId, err := utils.URLParam(r, "editor_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.DeleteEditor(editorId); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}

// --- Profile ---

type profileRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfile changes the credentials of the calling session. A master
// session updates the master override, an editor session its own account.
// An empty password keeps the current one.
func (s *SystemService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, err := auth.SessionFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params profileRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Username == "" {
		http.Error(w, "username must not be empty", http.StatusUnprocessableEntity)
		return
	}

	switch session.Role {
	case schema.RoleMaster:
		password := params.Password
		if password == "" {
			password = auth.DefaultMasterPassword
			if custom := s.store.MasterCredentials(); custom != nil {
				password = custom.Password
			}
		}
		s.store.SetMasterCredentials(params.Username, password)

	case schema.RoleEditor:
		if err := s.store.UpdateEditorProfile(session.Username, params.Username, params.Password); err != nil {
			if errors.Is(err, schema.ErrEditorNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

	default:
		http.Error(w, fmt.Sprintf("invalid session role '%v'", session.Role), http.StatusForbidden)
		return
	}

	slog.Info("updated profile", "role", session.Role, "username", params.Username)

	utils.WriteSuccess(w)
}
