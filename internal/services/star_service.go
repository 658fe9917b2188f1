// Package services – StarService
//
// This file implements the star balance: a persistent credit on the user row
// plus zero or more temporary grants that evaporate at their expiry. Spending
// consumes the persistent credit first, then grants in expiry order, so the
// shortest-lived stars are used before they are lost. Stars buy posting time
// through fixed exchange presets that extend the user's access window.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/repo"
	"github.com/t-lnarr/muradoff/internal/texts"
)

// DefaultExchangePresets maps a star price to the number of posting days it
// buys.
var DefaultExchangePresets = map[float64]int{
	5:   1,
	11:  2,
	27:  5,
	53:  10,
	130: 25,
	150: 30,
}

// StarDetails is a point-in-time view of a user's balance.
type StarDetails struct {
	Persistent float64 `json:"persistent"`
	Temporary  float64 `json:"temporary"`
	Total      float64 `json:"total"`
}

// StarService provides balance queries, spending, rewards, and exchanges.
type StarService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Notifier tells users about credits. Optional.
	Notifier Notifier

	// DailyBonusStars is the reward for a daily bonus claim.
	DailyBonusStars float64
	// Presets maps star prices to posting days for Exchange.
	Presets map[float64]int

	now func() time.Time
}

// NewStarService constructs a StarService with the default exchange presets.
func NewStarService(db *gorm.DB, notifier Notifier, dailyBonus float64) *StarService {
	return &StarService{
		DB:              db,
		Notifier:        notifier,
		DailyBonusStars: dailyBonus,
		Presets:         DefaultExchangePresets,
		now:             time.Now,
	}
}

// Details returns the user's balance, pruning expired grants on the way.
func (s *StarService) Details(ctx context.Context, userID int64) (*StarDetails, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	if err := repo.PruneExpiredStarGrants(ctx, s.DB, userID, now); err != nil {
		return nil, err
	}
	grants, err := repo.ListActiveStarGrants(ctx, s.DB, userID, now)
	if err != nil {
		return nil, err
	}

	var temp float64
	for _, g := range grants {
		temp += g.Amount
	}
	return &StarDetails{
		Persistent: u.Stars,
		Temporary:  temp,
		Total:      u.Stars + temp,
	}, nil
}

// Deduct spends amount from the user's balance: persistent credit first,
// then temporary grants soonest-expiring first. Fails without side effects
// when the total balance is short.
func (s *StarService) Deduct(ctx context.Context, userID int64, amount float64) error {
	tr := otel.Tracer("services/StarService")
	ctx, span := tr.Start(ctx, "Deduct",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Float64("stars.amount", amount),
		),
	)
	defer span.End()

	if amount <= 0 {
		return nil
	}

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	now := s.now().UTC()
	grants, err := repo.ListActiveStarGrants(ctx, s.DB, userID, now)
	if err != nil {
		return err
	}
	var temp float64
	for _, g := range grants {
		temp += g.Amount
	}
	if u.Stars+temp < amount {
		return ErrInsufficientStars
	}

	remaining := amount
	if u.Stars > 0 {
		take := min(u.Stars, remaining)
		u.Stars -= take
		remaining -= take
		if err := repo.SaveUser(ctx, s.DB, u); err != nil {
			return err
		}
	}
	for i := range grants {
		if remaining <= 0 {
			break
		}
		g := &grants[i]
		take := min(g.Amount, remaining)
		g.Amount -= take
		remaining -= take
		if g.Amount <= 0 {
			if err := repo.DeleteStarGrant(ctx, s.DB, g.ID); err != nil {
				return err
			}
			continue
		}
		if err := repo.SaveStarGrant(ctx, s.DB, g); err != nil {
			return err
		}
	}
	return nil
}

// Exchange spends a preset star price and extends the user's access window
// by the preset's number of days. The extension stacks on an unexpired
// window rather than restarting it.
func (s *StarService) Exchange(ctx context.Context, userID int64, price float64) (*time.Time, error) {
	tr := otel.Tracer("services/StarService")
	ctx, span := tr.Start(ctx, "Exchange",
		trace.WithAttributes(
			attribute.Int64("user.id", userID),
			attribute.Float64("stars.price", price),
		),
	)
	defer span.End()

	days, ok := s.Presets[price]
	if !ok {
		return nil, ErrUnknownPreset
	}
	if err := s.Deduct(ctx, userID, price); err != nil {
		return nil, err
	}

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	base := now
	if u.TrialEnd != nil && u.TrialEnd.After(now) {
		base = *u.TrialEnd
	}
	end := base.Add(time.Duration(days) * 24 * time.Hour)
	u.TrialEnd = &end
	if err := repo.SaveUser(ctx, s.DB, u); err != nil {
		return nil, err
	}
	return &end, nil
}

// DailyBonus credits the daily reward once per 24 hours.
func (s *StarService) DailyBonus(ctx context.Context, userID int64) (float64, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	now := s.now().UTC()
	if u.LastDailyBonus != nil && now.Sub(*u.LastDailyBonus) < 24*time.Hour {
		return 0, ErrBonusAlreadyClaimed
	}

	u.Stars += s.DailyBonusStars
	u.LastDailyBonus = &now
	if err := repo.SaveUser(ctx, s.DB, u); err != nil {
		return 0, err
	}
	return s.DailyBonusStars, nil
}

// Fill credits stars to a user by operator action. A positive expiresHours
// makes the credit a temporary grant; zero makes it persistent. The user is
// told either way.
func (s *StarService) Fill(ctx context.Context, userID int64, amount float64, expiresHours int) error {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if expiresHours > 0 {
		expires := s.now().UTC().Add(time.Duration(expiresHours) * time.Hour)
		if _, err := repo.CreateStarGrant(ctx, s.DB, userID, amount, expires); err != nil {
			return err
		}
	} else if err := repo.AddUserStars(ctx, s.DB, userID, amount); err != nil {
		return err
	}

	if s.Notifier != nil {
		s.Notifier.Notify(u.ID, texts.Tf(u.Language, texts.KeyStarsReceived, amount))
	}
	return nil
}
