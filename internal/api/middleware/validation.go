package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/jbpratt/roomshare/internal/api"
	"github.com/jbpratt/roomshare/internal/errors"
	"github.com/jbpratt/roomshare/internal/storage"
)

// ValidateNames rejects requests whose room, name or id route parameters
// could escape the storage root. It must be installed with Router.Use so
// that parameters are already extracted.
func ValidateNames(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks := []struct {
			param    string
			validate func(string) error
		}{
			{"room", storage.ValidateName},
			{"name", storage.ValidateFileName},
			{"id", storage.ValidateName},
		}

		for _, c := range checks {
			value := api.GetParam(r, c.param)
			if value == "" {
				continue
			}
			if err := c.validate(value); err != nil {
				errors.WriteErrorResponse(w, http.StatusBadRequest,
					errors.NameInvalid(err.Error()))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// CORS returns a middleware allowing the browser client to call the API from
// the given origins
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Content-Length", "Range", RequestIDHeader},
		ExposedHeaders: []string{"Content-Length", "Content-Range", "Accept-Ranges", RequestIDHeader},
		MaxAge:         86400,
	})
	return c.Handler
}
