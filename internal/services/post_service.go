// Package services – PostService
//
// This file implements the PostService, which manages the lifecycle of
// scheduled posts: creation with eligibility and quota checks, listing,
// pausing, and deletion with live-message cleanup. Every mutating method
// takes the coarse lock shared with the scheduler loop, so lifecycle calls
// and ticks never interleave.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/repo"
	"github.com/t-lnarr/muradoff/internal/texts"
)

// MessageDeleter removes a previously sent channel message. The scheduler's
// platform adapter satisfies this.
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, ref domain.MessageRef) error
}

// Notifier delivers a private notice to a user, fire-and-forget.
type Notifier interface {
	Notify(userID int64, text string)
}

// PostService provides scheduled-post lifecycle operations.
type PostService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Deleter takes down live channel messages when a post is removed.
	Deleter MessageDeleter
	// Notifier tells an owner when an operator removed their post. Optional.
	Notifier Notifier
	// Mu is the coarse lock shared with the scheduler.
	Mu *sync.Mutex
	// IsElevated reports whether a user id is exempt from trial and quota
	// checks and may act on other users' posts.
	IsElevated func(int64) bool

	// MinIntervalMinutes and MaxIntervalMinutes bound the posting cadence.
	MinIntervalMinutes int
	MaxIntervalMinutes int
	// MaxPostsPerUser caps how many posts a non-elevated user may hold.
	MaxPostsPerUser int

	// lastID guards post-id monotonicity; only touched under Mu.
	lastID int64

	now func() time.Time
}

// NewPostService constructs a PostService with the given limits.
func NewPostService(db *gorm.DB, deleter MessageDeleter, notifier Notifier, mu *sync.Mutex, isElevated func(int64) bool, minInterval, maxInterval, maxPosts int) *PostService {
	return &PostService{
		DB:                 db,
		Deleter:            deleter,
		Notifier:           notifier,
		Mu:                 mu,
		IsElevated:         isElevated,
		MinIntervalMinutes: minInterval,
		MaxIntervalMinutes: maxInterval,
		MaxPostsPerUser:    maxPosts,
		now:                time.Now,
	}
}

// CreateInput carries the fields of a new scheduled post.
type CreateInput struct {
	OwnerID         int64
	Channel         string
	Kind            string
	Text            string
	PhotoRef        string
	Caption         string
	IntervalMinutes int
}

// Create validates eligibility and quota, then inserts a new post scheduled
// to fire on the next tick. Post ids are millisecond timestamps bumped to
// stay strictly increasing, so an id is never reused within one store.
func (s *PostService) Create(ctx context.Context, in CreateInput) (*domain.ScheduledPost, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.Int64("user.id", in.OwnerID),
			attribute.String("post.channel", in.Channel),
		),
	)
	defer span.End()

	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	owner, err := repo.GetUser(ctx, s.DB, in.OwnerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if owner.Banned {
		return nil, ErrUserBanned
	}

	now := s.now().UTC()
	elevated := s.elevated(in.OwnerID)
	if owner.TrialExpired(now) && !elevated {
		return nil, ErrTrialExpired
	}
	if !elevated {
		n, err := repo.CountPostsByOwner(ctx, s.DB, in.OwnerID)
		if err != nil {
			return nil, err
		}
		if n >= int64(s.MaxPostsPerUser) {
			return nil, ErrTooManyPosts
		}
	}

	post := &domain.ScheduledPost{
		ID:              s.nextID(now),
		OwnerID:         in.OwnerID,
		Channel:         in.Channel,
		Kind:            in.Kind,
		Text:            in.Text,
		PhotoRef:        in.PhotoRef,
		Caption:         in.Caption,
		IntervalMinutes: in.IntervalMinutes,
		NextFireAt:      now, // due immediately: first emission happens on the next tick
		CreatedAt:       now,
	}
	if err := repo.CreatePost(ctx, s.DB, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get returns a post the caller may see.
func (s *PostService) Get(ctx context.Context, callerID int64, postID string) (*domain.ScheduledPost, error) {
	post, err := repo.GetPost(ctx, s.DB, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.OwnerID != callerID && !s.elevated(callerID) {
		return nil, ErrPermissionDenied
	}
	return post, nil
}

// List returns the posts owned by ownerID. Callers may list their own posts;
// elevated callers may list anyone's.
func (s *PostService) List(ctx context.Context, callerID, ownerID int64) ([]domain.ScheduledPost, error) {
	if callerID != ownerID && !s.elevated(callerID) {
		return nil, ErrPermissionDenied
	}
	return repo.ListPostsByOwner(ctx, s.DB, ownerID)
}

// SetPaused pauses or resumes a post. Resuming does not reset NextFireAt, so
// an overdue post fires on the next tick after resume.
func (s *PostService) SetPaused(ctx context.Context, callerID int64, postID string, paused bool) (*domain.ScheduledPost, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "SetPaused",
		trace.WithAttributes(attribute.String("post.id", postID)),
	)
	defer span.End()

	s.Mu.Lock()
	defer s.Mu.Unlock()

	post, err := s.owned(ctx, callerID, postID)
	if err != nil {
		return nil, err
	}
	if post.Paused == paused {
		return post, nil
	}
	if err := repo.SetPostPaused(ctx, s.DB, postID, paused); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	post.Paused = paused
	return post, nil
}

// Delete removes a post. If the post's channel currently shows this post's
// message, the message is taken down and the channel pointer cleared before
// the row goes away. When an operator deletes someone else's post, the owner
// is told.
func (s *PostService) Delete(ctx context.Context, callerID int64, postID string) error {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("post.id", postID)),
	)
	defer span.End()

	s.Mu.Lock()
	defer s.Mu.Unlock()

	post, err := s.owned(ctx, callerID, postID)
	if err != nil {
		return err
	}

	if last, lerr := repo.GetChannelLastPost(ctx, s.DB, post.Channel); lerr == nil && last.PostID == post.ID {
		// Best effort: the platform may have already dropped the message.
		_ = s.Deleter.DeleteMessage(ctx, last.Ref())
		if derr := repo.DeleteChannelLastPost(ctx, s.DB, post.Channel); derr != nil {
			return derr
		}
	}

	if err := repo.DeletePost(ctx, s.DB, post.ID); err != nil {
		return err
	}

	if callerID != post.OwnerID && s.Notifier != nil {
		lang := ""
		if owner, oerr := repo.GetUser(ctx, s.DB, post.OwnerID); oerr == nil {
			lang = owner.Language
		}
		s.Notifier.Notify(post.OwnerID, texts.T(lang, texts.KeyPostDeleted))
	}
	return nil
}

// owned fetches a post and checks the caller may mutate it.
func (s *PostService) owned(ctx context.Context, callerID int64, postID string) (*domain.ScheduledPost, error) {
	post, err := repo.GetPost(ctx, s.DB, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.OwnerID != callerID && !s.elevated(callerID) {
		return nil, ErrPermissionDenied
	}
	return post, nil
}

func (s *PostService) validateInput(in *CreateInput) error {
	in.Channel = strings.TrimSpace(in.Channel)
	if in.Channel == "" {
		return ErrInvalidPost
	}
	if in.IntervalMinutes < s.MinIntervalMinutes || in.IntervalMinutes > s.MaxIntervalMinutes {
		return ErrInvalidInterval
	}
	switch in.Kind {
	case domain.KindText:
		if strings.TrimSpace(in.Text) == "" {
			return ErrInvalidPost
		}
	case domain.KindPhoto:
		if strings.TrimSpace(in.PhotoRef) == "" {
			return ErrInvalidPost
		}
	default:
		return ErrInvalidPost
	}
	return nil
}

func (s *PostService) elevated(id int64) bool {
	return s.IsElevated != nil && s.IsElevated(id)
}

// nextID derives a post id from the wall clock, bumping past the previous id
// when two creations land in the same millisecond. Caller holds Mu.
func (s *PostService) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return strconv.FormatInt(ms, 10)
}
