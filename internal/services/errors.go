// Package services defines the business logic for posts, users, stars,
// referrals, and promo codes. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Post lifecycle errors.
var (
	// ErrPostNotFound indicates that the requested post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrPermissionDenied is returned when a caller tries to act on a post
	// they do not own and is not an operator.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTrialExpired is returned when a user with an expired trial and no
	// exemption tries to create a post.
	ErrTrialExpired = errors.New("trial expired")

	// ErrTooManyPosts is returned when a user is at their post cap.
	ErrTooManyPosts = errors.New("too many posts")

	// ErrInvalidInterval is returned when a posting interval is outside the
	// allowed range.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrInvalidPost is returned when a post has no content for its kind.
	ErrInvalidPost = errors.New("invalid post content")
)

// User errors.
var (
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserBanned is returned when a banned user attempts an operation.
	ErrUserBanned = errors.New("user is banned")

	// ErrAlreadyReferred is returned when a user already has a referral
	// attribution recorded.
	ErrAlreadyReferred = errors.New("user already referred")

	// ErrSelfReferral is returned when a user tries to refer themselves.
	ErrSelfReferral = errors.New("cannot refer yourself")
)

// Star balance errors.
var (
	// ErrInsufficientStars is returned when a deduction exceeds the user's
	// total balance.
	ErrInsufficientStars = errors.New("insufficient stars")

	// ErrUnknownPreset is returned when an exchange preset does not exist.
	ErrUnknownPreset = errors.New("unknown exchange preset")

	// ErrBonusAlreadyClaimed is returned when the daily bonus cooldown has
	// not elapsed.
	ErrBonusAlreadyClaimed = errors.New("daily bonus already claimed")
)

// Promo code errors.
var (
	// ErrPromoNotFound indicates that the promo code does not exist.
	ErrPromoNotFound = errors.New("promo code not found")

	// ErrPromoExists is returned when creating a code that already exists.
	ErrPromoExists = errors.New("promo code already exists")

	// ErrPromoExhausted is returned when a code has reached its use limit.
	ErrPromoExhausted = errors.New("promo code exhausted")

	// ErrPromoAlreadyUsed is returned when a user redeems a code twice.
	ErrPromoAlreadyUsed = errors.New("promo code already redeemed")
)
