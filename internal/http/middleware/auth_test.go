package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(elevated func(int64) bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Identity())
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	admin := r.Group("/admin", RequireElevated(elevated))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r *gin.Engine, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentity(t *testing.T) {
	r := newAuthRouter(nil)

	if w := get(r, "/whoami", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: %d, want 401", w.Code)
	}
	if w := get(r, "/whoami", "abc"); w.Code != http.StatusUnauthorized {
		t.Fatalf("junk header: %d, want 401", w.Code)
	}
	if w := get(r, "/whoami", "-5"); w.Code != http.StatusUnauthorized {
		t.Fatalf("negative id: %d, want 401", w.Code)
	}
	w := get(r, "/whoami", "42")
	if w.Code != http.StatusOK || w.Body.String() != `{"id":42}` {
		t.Fatalf("valid id: %d %s", w.Code, w.Body.String())
	}
}

func TestRequireElevated(t *testing.T) {
	r := newAuthRouter(func(id int64) bool { return id == 1 })

	if w := get(r, "/admin/ping", "42"); w.Code != http.StatusForbidden {
		t.Fatalf("non-operator: %d, want 403", w.Code)
	}
	if w := get(r, "/admin/ping", "1"); w.Code != http.StatusOK {
		t.Fatalf("operator: %d, want 200", w.Code)
	}

	// A nil elevation check locks the group entirely.
	locked := newAuthRouter(nil)
	if w := get(locked, "/admin/ping", "1"); w.Code != http.StatusForbidden {
		t.Fatalf("nil check: %d, want 403", w.Code)
	}
}
