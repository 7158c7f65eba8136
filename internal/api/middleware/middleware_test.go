package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbpratt/roomshare/internal/api"
	"github.com/jbpratt/roomshare/internal/errors"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seenID string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest("POST", "/new_file/demo/a.bin/0", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.NotEmpty(t, seenID)
	require.Equal(t, seenID, w.Header().Get(RequestIDHeader))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "HTTP request", entry["msg"])
	require.Equal(t, seenID, entry["request_id"])
	require.Equal(t, float64(http.StatusCreated), entry["status"])
	require.Equal(t, float64(5), entry["size"])
	require.Equal(t, "/new_file/demo/a.bin/0", entry["path"])
}

func TestRequestLoggerKeepsClientID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	var seenID string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/list", nil)
	req.Header.Set(RequestIDHeader, "client-chosen")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "client-chosen", seenID)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(mark("first"), mark("second"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestValidateNames(t *testing.T) {
	router := api.NewRouter()
	router.Use(ValidateNames)
	router.GET("/files/{room}/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"valid", "/files/demo/a.txt", http.StatusOK},
		{"dotdot room", "/files/../a.txt", http.StatusBadRequest},
		{"dotdot name", "/files/demo/..", http.StatusBadRequest},
		{"backslash", `/files/demo/a\b`, http.StatusBadRequest},
		{"marker name", "/files/demo/a.txt.uploading", http.StatusBadRequest},
		{"overlong", "/files/demo/" + strings.Repeat("x", 300), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.URL.Path = tt.path
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusBadRequest {
				var body errors.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, errors.CodeNameInvalid, body.Errors[0].Code)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("OPTIONS", "/new_file/demo/a.bin/0", nil)
	req.Header.Set("Origin", "http://192.168.1.20:8080")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
