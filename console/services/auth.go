package services

import (
	"net/http"

	"campusdata/console/auth"
	"campusdata/console/schema"
	"campusdata/utils"

	"github.com/go-chi/chi/v5"
)

type AuthService struct {
	gate     *auth.Gate
	sessions *auth.SessionManager
}

func (s *AuthService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", s.Login)

	return r
}

type loginRequest struct {
	Role     schema.AppRole `json:"role"`
	Username string         `json:"username"`
	Password string         `json:"password"`
}

type loginResponse struct {
	AccessToken string         `json:"accessToken"`
	Session     schema.Session `json:"session"`
}

func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var params loginRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	session, err := s.gate.Authenticate(params.Role, params.Username, params.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := s.sessions.CreateSessionToken(session)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, loginResponse{AccessToken: token, Session: session})
}
