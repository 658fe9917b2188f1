// Scheduled post HTTP handlers.
//
// This file exposes REST endpoints for the post lifecycle:
//   - POST   /posts             (create)
//   - GET    /posts             (list own; operators may list any owner)
//   - GET    /posts/{id}        (fetch)
//   - POST   /posts/{id}/pause  (pause)
//   - POST   /posts/{id}/resume (resume)
//   - DELETE /posts/{id}        (delete, with live-message cleanup)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/http/middleware"
	"github.com/t-lnarr/muradoff/internal/services"
)

//
// Service contracts (context-aware)
//

// PostService defines the post lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use.
type PostService interface {
	// Create validates and inserts a new scheduled post.
	Create(ctx context.Context, in services.CreateInput) (*domain.ScheduledPost, error)
	// Get returns one post the caller may see.
	Get(ctx context.Context, callerID int64, postID string) (*domain.ScheduledPost, error)
	// List returns the posts owned by ownerID, authorization permitting.
	List(ctx context.Context, callerID, ownerID int64) ([]domain.ScheduledPost, error)
	// SetPaused pauses or resumes a post.
	SetPaused(ctx context.Context, callerID int64, postID string, paused bool) (*domain.ScheduledPost, error)
	// Delete removes a post and its live channel message.
	Delete(ctx context.Context, callerID int64, postID string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for posts, users, stars, promo codes,
// and operator tools. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	posts  PostService
	users  UserService
	stars  StarService
	promos PromoService
	stats  StatsService
}

// New constructs a Handlers instance bound to the given services.
func New(posts PostService, users UserService, stars StarService, promos PromoService, stats StatsService) *Handlers {
	return &Handlers{posts: posts, users: users, stars: stars, promos: promos, stats: stats}
}

// caller returns the authenticated user id set by the identity middleware.
func caller(c *gin.Context) int64 {
	id, _ := middleware.UserID(c)
	return id
}

//
// DTOs
//

// CreatePostRequest is the JSON payload for creating a scheduled post.
type CreatePostRequest struct {
	// Channel is the target channel, @username or numeric chat id.
	Channel string `json:"channel" binding:"required"`
	// Kind selects the payload: "text" or "photo".
	Kind string `json:"kind" binding:"required"`
	// Text is the message body for text posts.
	Text string `json:"text"`
	// PhotoRef is the platform file id for photo posts.
	PhotoRef string `json:"photo_ref"`
	// Caption accompanies photo posts.
	Caption string `json:"caption"`
	// IntervalMinutes is the repost cadence.
	IntervalMinutes int `json:"interval_minutes" binding:"required"`
}

// ListPostsResponse wraps a post listing.
type ListPostsResponse struct {
	Posts []domain.ScheduledPost `json:"posts"`
}

//
// Endpoints
//

// CreatePost handles POST /posts.
func (h *Handlers) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	post, err := h.posts.Create(c.Request.Context(), services.CreateInput{
		OwnerID:         caller(c),
		Channel:         strings.TrimSpace(req.Channel),
		Kind:            req.Kind,
		Text:            req.Text,
		PhotoRef:        req.PhotoRef,
		Caption:         req.Caption,
		IntervalMinutes: req.IntervalMinutes,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, post)
}

// ListPosts handles GET /posts. Operators may pass ?owner_id= to inspect
// another user's posts; everyone else lists their own.
func (h *Handlers) ListPosts(c *gin.Context) {
	callerID := caller(c)
	ownerID := callerID
	if raw := c.Query("owner_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid owner_id")
			return
		}
		ownerID = id
	}

	posts, err := h.posts.List(c.Request.Context(), callerID, ownerID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListPostsResponse{Posts: posts})
}

// GetPost handles GET /posts/:id.
func (h *Handlers) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, post)
}

// PausePost handles POST /posts/:id/pause.
func (h *Handlers) PausePost(c *gin.Context) {
	h.setPaused(c, true)
}

// ResumePost handles POST /posts/:id/resume.
func (h *Handlers) ResumePost(c *gin.Context) {
	h.setPaused(c, false)
}

func (h *Handlers) setPaused(c *gin.Context, paused bool) {
	post, err := h.posts.SetPaused(c.Request.Context(), caller(c), c.Param("id"), paused)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, post)
}

// DeletePost handles DELETE /posts/:id.
func (h *Handlers) DeletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
