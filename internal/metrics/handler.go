package metrics

import (
	"crypto/subtle"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jbpratt/roomshare/internal/config"
)

// Handler serves the registry in the Prometheus exposition format. When
// auth carries both a username and a password the endpoint requires HTTP
// basic authentication.
func (m *Registry) Handler(auth *config.BasicAuthConfig) http.Handler {
	handler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
		// Scrape failures are counted in promhttp_metric_handler_errors_total
		Registry: m.registry,
	})

	if auth == nil || auth.Username == "" || auth.Password == "" {
		return handler
	}
	return basicAuth(handler, auth.Username, auth.Password)
}

// basicAuth guards handler with constant-time credential checks
func basicAuth(handler http.Handler, username, password string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

		if !ok || !userOK || !passOK {
			w.Header().Set("WWW-Authenticate", `Basic realm="roomshare metrics", charset="UTF-8"`)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
