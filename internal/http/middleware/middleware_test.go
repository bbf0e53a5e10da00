package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-tracker/internal/model"
)

type stubParser struct {
	principal model.Principal
	err       error
	got       string
}

func (s *stubParser) Parse(token string) (model.Principal, error) {
	s.got = token
	return s.principal, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuth(t *testing.T) {
	principal := model.Principal{UserID: uuid.New(), Name: "Sam", Role: model.UserRoleAdmin}

	tests := []struct {
		name   string
		header string
		err    error
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "parse failure", header: "Bearer abc", err: errors.New("bad"), status: http.StatusUnauthorized},
		{name: "ok", header: "Bearer abc", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &stubParser{principal: principal, err: tt.err}
			router := gin.New()
			router.GET("/", Auth(parser), func(c *gin.Context) {
				p, ok := MustPrincipal(c)
				if !ok || p != principal {
					t.Errorf("principal not set: %+v", p)
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK && parser.got != "abc" {
				t.Fatalf("parser got %q", parser.got)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	router := gin.New()
	router.Use(RequestLogger(zerolog.New(&buf)))
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("kaput"))
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log: %v (%s)", err, buf.String())
	}
	if entry["level"] != "error" || entry["path"] != "/boom" || entry["error"] != "kaput" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
	if entry["status"] != float64(http.StatusInternalServerError) {
		t.Fatalf("unexpected status field: %v", entry["status"])
	}
}
