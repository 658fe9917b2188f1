// Package services – UserService
//
// This file implements the UserService: user registration with the free
// trial window, one-time referral attribution with its star reward, ban and
// unban with owner notification, language preference, and broadcasts.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/repo"
	"github.com/t-lnarr/muradoff/internal/texts"
)

// UserService provides user account operations.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Notifier tells users about account-level events. Optional.
	Notifier Notifier

	// TrialDays is the free trial length granted at registration.
	TrialDays int
	// ReferralStars is the reward paid to an inviter per referred user.
	ReferralStars float64
	// ReferralHours, when positive, makes the referral reward a temporary
	// grant expiring after that many hours instead of a persistent credit.
	ReferralHours int

	now func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, notifier Notifier, trialDays int, referralStars float64, referralHours int) *UserService {
	return &UserService{
		DB:            db,
		Notifier:      notifier,
		TrialDays:     trialDays,
		ReferralStars: referralStars,
		ReferralHours: referralHours,
		now:           time.Now,
	}
}

// Ensure registers a user on first contact and refreshes the username on
// later ones. New users get the trial window and the default language.
func (s *UserService) Ensure(ctx context.Context, id int64, username string) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Ensure",
		trace.WithAttributes(attribute.Int64("user.id", id)),
	)
	defer span.End()

	username = strings.TrimSpace(username)

	u, err := repo.GetUser(ctx, s.DB, id)
	if err == nil {
		if username != "" && u.Username != username {
			u.Username = username
			if serr := repo.SaveUser(ctx, s.DB, u); serr != nil {
				return nil, serr
			}
		}
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	u = &domain.User{
		ID:        id,
		Username:  username,
		Language:  "tk",
		CreatedAt: now,
	}
	if s.TrialDays > 0 {
		end := now.Add(time.Duration(s.TrialDays) * 24 * time.Hour)
		u.TrialEnd = &end
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Get fetches a user.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// RegisterReferral records a one-time attribution of invitee to inviter and
// pays the inviter's reward. A user can be attributed at most once, and
// never to themselves.
func (s *UserService) RegisterReferral(ctx context.Context, inviterID, inviteeID int64) error {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "RegisterReferral",
		trace.WithAttributes(
			attribute.Int64("referral.inviter", inviterID),
			attribute.Int64("referral.invitee", inviteeID),
		),
	)
	defer span.End()

	if inviterID == inviteeID {
		return ErrSelfReferral
	}

	inviter, err := repo.GetUser(ctx, s.DB, inviterID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	already, err := repo.HasReferral(ctx, s.DB, inviteeID)
	if err != nil {
		return err
	}
	if already {
		return ErrAlreadyReferred
	}
	if err := repo.CreateReferral(ctx, s.DB, inviterID, inviteeID); err != nil {
		return err
	}
	if invitee, gerr := repo.GetUser(ctx, s.DB, inviteeID); gerr == nil {
		invitee.ReferredBy = &inviterID
		if serr := repo.SaveUser(ctx, s.DB, invitee); serr != nil {
			return serr
		}
	}

	if s.ReferralStars > 0 {
		now := s.now().UTC()
		if s.ReferralHours > 0 {
			expires := now.Add(time.Duration(s.ReferralHours) * time.Hour)
			if _, gerr := repo.CreateStarGrant(ctx, s.DB, inviterID, s.ReferralStars, expires); gerr != nil {
				return gerr
			}
		} else if aerr := repo.AddUserStars(ctx, s.DB, inviterID, s.ReferralStars); aerr != nil {
			return aerr
		}
		s.notify(inviter.ID, texts.Tf(inviter.Language, texts.KeyStarsReceived, s.ReferralStars))
	}
	return nil
}

// SetBanned bans or unbans a user and tells them. Banned owners' posts are
// evicted by the scheduler on its next tick.
func (s *UserService) SetBanned(ctx context.Context, id int64, banned bool) error {
	if err := repo.SetUserBanned(ctx, s.DB, id, banned); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		return nil // ban recorded; notification is best effort
	}
	key := texts.KeyBanned
	if !banned {
		key = texts.KeyUnbanned
	}
	s.notify(u.ID, texts.T(u.Language, key))
	return nil
}

// SetLanguage stores the user's preferred language tag.
func (s *UserService) SetLanguage(ctx context.Context, id int64, lang string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	u.Language = strings.TrimSpace(lang)
	return repo.SaveUser(ctx, s.DB, u)
}

// Broadcast notifies every registered user. Banned users are skipped unless
// includeBanned is set. Returns the number of notifications handed off.
func (s *UserService) Broadcast(ctx context.Context, text string, includeBanned bool) (int, error) {
	ids, err := repo.ListUserIDs(ctx, s.DB, includeBanned)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.notify(id, text)
	}
	return len(ids), nil
}

func (s *UserService) notify(id int64, text string) {
	if s.Notifier != nil {
		s.Notifier.Notify(id, text)
	}
}
