package auth

import (
	"fmt"
	"net/http"

	"campusdata/console/schema"
)

// MasterOnly restricts an endpoint to sessions holding the master role.
func MasterOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			session, err := SessionFromContext(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			if session.Role != schema.RoleMaster {
				http.Error(w, fmt.Sprintf("user %v does not have the master role", session.Username), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
