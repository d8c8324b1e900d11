package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"campusdata/console/schema"

	"github.com/go-chi/chi/v5"
)

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
		headers:  nil,
		json:     nil,
		body:     nil,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

func (r *httpTestRequest) Body(body io.Reader) *httpTestRequest {
	r.body = body
	return r
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

func (r *httpTestRequest) send() (*httptest.ResponseRecorder, error) {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return nil, fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	switch w.Result().StatusCode {
	case http.StatusOK:
		return w, nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrForbidden
	default:
		return nil, fmt.Errorf("%v request to endpoint %v returned status %d, content '%v'", r.method, r.endpoint, w.Result().StatusCode, w.Body.String())
	}
}

// response body will be parsed into result, passing nil indicates that no result is returned.
func (r *httpTestRequest) Do(result interface{}) error {
	w, err := r.send()
	if err != nil {
		return err
	}

	res := w.Result()
	defer res.Body.Close()

	if result != nil {
		err := json.NewDecoder(res.Body).Decode(result)
		if err != nil {
			return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

// DoRaw returns the raw response body, for endpoints serving file downloads.
func (r *httpTestRequest) DoRaw() ([]byte, error) {
	w, err := r.send()
	if err != nil {
		return nil, err
	}
	return w.Body.Bytes(), nil
}

type client struct {
	api       chi.Router
	authToken string
}

func (c *client) request(method, endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, method, endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Get(endpoint string) *httpTestRequest {
	return c.request("GET", endpoint)
}

func (c *client) Post(endpoint string) *httpTestRequest {
	return c.request("POST", endpoint)
}

func (c *client) Put(endpoint string) *httpTestRequest {
	return c.request("PUT", endpoint)
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	return c.request("DELETE", endpoint)
}

type loginInfo struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *client) login(login loginInfo) error {
	var res struct {
		AccessToken string         `json:"accessToken"`
		Session     schema.Session `json:"session"`
	}
	err := c.Post("/auth/login").Json(login).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res.AccessToken

	return nil
}

func (c *client) createUser(user schema.PlatformUser) (schema.PlatformUser, error) {
	var res schema.PlatformUser
	err := c.Post("/users/").Json(user).Do(&res)
	return res, err
}

func (c *client) listUsers(query string) ([]schema.PlatformUser, error) {
	endpoint := "/users/"
	if query != "" {
		endpoint += "?q=" + query
	}
	var res []schema.PlatformUser
	err := c.Get(endpoint).Do(&res)
	return res, err
}

func (c *client) updateUser(user schema.PlatformUser) error {
	return c.Put(fmt.Sprintf("/users/%v", user.Id)).Json(user).Do(nil)
}

func (c *client) deleteUser(userId string) error {
	return c.Delete(fmt.Sprintf("/users/%v", userId)).Do(nil)
}

func (c *client) bulkDelete(userIds []string) (int, error) {
	var res struct {
		Deleted int `json:"deleted"`
	}
	err := c.Post("/users/delete").Json(map[string][]string{"userIds": userIds}).Do(&res)
	return res.Deleted, err
}

func (c *client) auditLogs() ([]schema.AuditLogEntry, error) {
	var res []schema.AuditLogEntry
	err := c.Get("/logs/").Do(&res)
	return res, err
}
