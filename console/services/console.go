// Package services exposes the console over HTTP: one service struct per
// route group, aggregated by Console into a single router.
package services

import (
	"io"
	"log"
	"net/http"
	"os"

	"campusdata/console/auth"
	"campusdata/console/store"
	"campusdata/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Console struct {
	auth   AuthService
	user   UserService
	system SystemService
	logs   LogService
}

func NewConsole(st *store.Store, secret []byte, accessLogStream io.Writer) Console {
	sessions := auth.NewSessionManager(secret)
	accessLog := auth.NewAccessLogger(accessLogStream)
	gate := auth.NewGate(st)

	return Console{
		auth:   AuthService{gate: gate, sessions: sessions},
		user:   UserService{store: st, sessions: sessions, accessLog: accessLog},
		system: SystemService{store: st, sessions: sessions, accessLog: accessLog},
		logs:   LogService{store: st, sessions: sessions, accessLog: accessLog},
	}
}

func (c *Console) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/auth", c.auth.Routes())
	r.Mount("/users", c.user.Routes())
	r.Mount("/system", c.system.Routes())
	r.Mount("/logs", c.logs.Routes())

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w)
	})

	return r
}
