package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/http/middleware"
	"github.com/t-lnarr/muradoff/internal/services"
)

// fakePostSvc scripts PostService responses per test.
type fakePostSvc struct {
	createFn func(ctx context.Context, in services.CreateInput) (*domain.ScheduledPost, error)
	getFn    func(ctx context.Context, callerID int64, postID string) (*domain.ScheduledPost, error)
	listFn   func(ctx context.Context, callerID, ownerID int64) ([]domain.ScheduledPost, error)
	pauseFn  func(ctx context.Context, callerID int64, postID string, paused bool) (*domain.ScheduledPost, error)
	deleteFn func(ctx context.Context, callerID int64, postID string) error
}

func (f *fakePostSvc) Create(ctx context.Context, in services.CreateInput) (*domain.ScheduledPost, error) {
	return f.createFn(ctx, in)
}
func (f *fakePostSvc) Get(ctx context.Context, callerID int64, postID string) (*domain.ScheduledPost, error) {
	return f.getFn(ctx, callerID, postID)
}
func (f *fakePostSvc) List(ctx context.Context, callerID, ownerID int64) ([]domain.ScheduledPost, error) {
	return f.listFn(ctx, callerID, ownerID)
}
func (f *fakePostSvc) SetPaused(ctx context.Context, callerID int64, postID string, paused bool) (*domain.ScheduledPost, error) {
	return f.pauseFn(ctx, callerID, postID, paused)
}
func (f *fakePostSvc) Delete(ctx context.Context, callerID int64, postID string) error {
	return f.deleteFn(ctx, callerID, postID)
}

func newPostRouter(svc PostService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(svc, nil, nil, nil, nil)

	api := r.Group("/api/v1", middleware.RequestID(), middleware.Identity())
	api.POST("/posts", h.CreatePost)
	api.GET("/posts", h.ListPosts)
	api.GET("/posts/:id", h.GetPost)
	api.POST("/posts/:id/pause", h.PausePost)
	api.DELETE("/posts/:id", h.DeletePost)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePost_Success(t *testing.T) {
	var got services.CreateInput
	svc := &fakePostSvc{
		createFn: func(_ context.Context, in services.CreateInput) (*domain.ScheduledPost, error) {
			got = in
			return &domain.ScheduledPost{ID: "1001", OwnerID: in.OwnerID, Channel: in.Channel}, nil
		},
	}
	r := newPostRouter(svc)

	body := `{"channel":"@chan","kind":"text","text":"hi","interval_minutes":30}`
	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", "7", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if got.OwnerID != 7 || got.Channel != "@chan" || got.IntervalMinutes != 30 {
		t.Fatalf("service input %+v", got)
	}

	var resp domain.ScheduledPost
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.ID != "1001" {
		t.Fatalf("response %s, %v", w.Body.String(), err)
	}
}

func TestCreatePost_BadRequests(t *testing.T) {
	svc := &fakePostSvc{
		createFn: func(_ context.Context, _ services.CreateInput) (*domain.ScheduledPost, error) {
			return nil, services.ErrInvalidInterval
		},
	}
	r := newPostRouter(svc)

	// Malformed JSON never reaches the service.
	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", "7", `{"channel":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}

	// Service validation errors map to 400 with a stable code.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts", "7", `{"channel":"@c","kind":"text","text":"x","interval_minutes":999999}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != ErrCodeBadRequest {
		t.Fatalf("error body %s", w.Body.String())
	}
}

func TestCreatePost_RequiresIdentity(t *testing.T) {
	r := newPostRouter(&fakePostSvc{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", "", `{}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts", "not-a-number", `{}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestGetPost_ErrorMapping(t *testing.T) {
	svc := &fakePostSvc{
		getFn: func(_ context.Context, _ int64, id string) (*domain.ScheduledPost, error) {
			if id == "denied" {
				return nil, services.ErrPermissionDenied
			}
			return nil, services.ErrPostNotFound
		},
	}
	r := newPostRouter(svc)

	if w := doJSON(t, r, http.MethodGet, "/api/v1/posts/missing", "7", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/v1/posts/denied", "7", ""); w.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", w.Code)
	}
}

func TestListPosts_OwnerOverride(t *testing.T) {
	var caller, owner int64
	svc := &fakePostSvc{
		listFn: func(_ context.Context, c, o int64) ([]domain.ScheduledPost, error) {
			caller, owner = c, o
			return []domain.ScheduledPost{{ID: "1"}}, nil
		},
	}
	r := newPostRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/api/v1/posts?owner_id=9", "7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if caller != 7 || owner != 9 {
		t.Fatalf("caller/owner %d/%d", caller, owner)
	}

	if w := doJSON(t, r, http.MethodGet, "/api/v1/posts?owner_id=junk", "7", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestPauseAndDelete(t *testing.T) {
	svc := &fakePostSvc{
		pauseFn: func(_ context.Context, _ int64, id string, paused bool) (*domain.ScheduledPost, error) {
			return &domain.ScheduledPost{ID: id, Paused: paused}, nil
		},
		deleteFn: func(_ context.Context, _ int64, _ string) error { return nil },
	}
	r := newPostRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts/1001/pause", "7", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"paused":true`) {
		t.Fatalf("pause: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodDelete, "/api/v1/posts/1001", "7", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", w.Code)
	}
}
