// Package domain defines the persistence models for users, scheduled posts,
// per-channel last-post pointers, star grants, promo codes, and referrals.
// These types are mapped with GORM and form the core data layer of the bot.
package domain

import (
	"time"
)

// Post content kinds. Stored as strings so the persisted document stays
// readable and additive (new kinds can be introduced without migration).
const (
	KindText  = "text"
	KindPhoto = "photo"
)

// MessageRef identifies a single emitted message on the messaging platform.
// Channels are addressed by a string key (username or numeric id), but once
// a message exists the platform reports the numeric chat id, which is what
// deletion requires.
type MessageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// IsZero reports whether the reference points at no message.
func (r MessageRef) IsZero() bool { return r.ChatID == 0 && r.MessageID == 0 }

// User represents a bot account. Users are created on first contact with a
// free trial window; posting eligibility is derived from Banned and TrialEnd.
//
// Fields:
//   - ID: the platform user id (primary key, assigned by the platform).
//   - Username: last known handle, for operator lookups.
//   - Language: preferred language tag ("tk" default, "ru" supported).
//   - Banned: banned users are evicted from the scheduler and ignored.
//   - Stars: persistent star balance.
//   - TrialEnd: end of the posting eligibility window; nil means unlimited.
//   - ReferredBy: inviter id recorded once on first contact.
//   - LastDailyBonus: last time the daily bonus was claimed.
type User struct {
	ID             int64      `json:"id"              gorm:"primaryKey"`
	Username       string     `json:"username"        gorm:"type:varchar(64);index"`
	Language       string     `json:"language"        gorm:"type:varchar(8);not null;default:'tk'"`
	Banned         bool       `json:"banned"          gorm:"not null;default:false"`
	Stars          float64    `json:"stars"           gorm:"not null;default:0"`
	TrialEnd       *time.Time `json:"trial_end,omitempty"`
	ReferredBy     *int64     `json:"referred_by,omitempty" gorm:"index"`
	LastDailyBonus *time.Time `json:"last_daily_bonus,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// TrialExpired reports whether the user's eligibility window has closed.
func (u *User) TrialExpired(now time.Time) bool {
	return u.TrialEnd != nil && now.After(*u.TrialEnd)
}

// ScheduledPost is a recurring posting job owned by a user and targeting one
// channel. The scheduler re-evaluates every post each tick; dispatching a post
// replaces the channel's previous message and advances NextFireAt.
//
// Fields:
//   - ID: opaque token derived from the creation timestamp; never reused.
//   - OwnerID: foreign key into users.
//   - Channel: destination channel key ("@name" or numeric id as string).
//   - Kind: KindText or KindPhoto.
//   - Text: message body for text posts.
//   - PhotoRef / Caption: platform file reference and caption for photo posts.
//   - IntervalMinutes: repost cadence, positive.
//   - NextFireAt: the post is due when now >= NextFireAt.
//   - Paused: paused posts are skipped entirely by the scheduler.
//   - LastChatID / LastMessageID: reference to the most recent emission.
type ScheduledPost struct {
	ID              string    `json:"id"               gorm:"type:varchar(24);primaryKey"`
	OwnerID         int64     `json:"owner_id"         gorm:"not null;index"`
	Channel         string    `json:"channel"          gorm:"type:varchar(128);not null;index"`
	Kind            string    `json:"kind"             gorm:"type:varchar(8);not null;check:kind IN ('text','photo')"`
	Text            string    `json:"text,omitempty"   gorm:"type:text"`
	PhotoRef        string    `json:"photo_ref,omitempty" gorm:"type:varchar(256)"`
	Caption         string    `json:"caption,omitempty"   gorm:"type:text"`
	IntervalMinutes int       `json:"interval_minutes" gorm:"not null"`
	NextFireAt      time.Time `json:"next_fire_at"     gorm:"not null;index"`
	Paused          bool      `json:"paused"           gorm:"not null;default:false"`
	LastChatID      int64     `json:"last_chat_id,omitempty"`
	LastMessageID   int       `json:"last_message_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for ScheduledPost.
func (ScheduledPost) TableName() string { return "scheduled_posts" }

// LastRef returns the reference to the most recently emitted message,
// or a zero ref when the post has not fired yet.
func (p *ScheduledPost) LastRef() MessageRef {
	return MessageRef{ChatID: p.LastChatID, MessageID: p.LastMessageID}
}

// Interval returns the repost cadence as a duration.
func (p *ScheduledPost) Interval() time.Duration {
	return time.Duration(p.IntervalMinutes) * time.Minute
}

// ChannelLastPost records which post currently owns the most recent message
// in a channel. At most one row exists per channel; it is overwritten on
// every successful dispatch and removed when the owning post goes away.
type ChannelLastPost struct {
	Channel   string    `json:"channel"    gorm:"type:varchar(128);primaryKey"`
	PostID    string    `json:"post_id"    gorm:"type:varchar(24);not null"`
	ChatID    int64     `json:"chat_id"    gorm:"not null"`
	MessageID int       `json:"message_id" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChannelLastPost.
func (ChannelLastPost) TableName() string { return "channel_last_posts" }

// Ref returns the recorded message reference.
func (c *ChannelLastPost) Ref() MessageRef {
	return MessageRef{ChatID: c.ChatID, MessageID: c.MessageID}
}

// StarGrant is a temporary star balance with an expiry, e.g. a timed referral
// bonus. Expired grants are pruned lazily whenever a balance is computed.
type StarGrant struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    int64     `json:"user_id"    gorm:"not null;index"`
	Amount    float64   `json:"amount"     gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for StarGrant.
func (StarGrant) TableName() string { return "star_grants" }

// Expired reports whether the grant no longer counts toward a balance.
func (g *StarGrant) Expired(now time.Time) bool { return !g.ExpiresAt.After(now) }

// PromoCode is an operator-created code granting stars on redemption.
// MaxUses nil means unlimited.
type PromoCode struct {
	Code      string    `json:"code"      gorm:"type:varchar(32);primaryKey"`
	Stars     float64   `json:"stars"     gorm:"not null"`
	MaxUses   *int      `json:"max_uses,omitempty"`
	Used      int       `json:"used"      gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for PromoCode.
func (PromoCode) TableName() string { return "promo_codes" }

// Exhausted reports whether the code has reached its use limit.
func (p *PromoCode) Exhausted() bool {
	return p.MaxUses != nil && p.Used >= *p.MaxUses
}

// PromoRedemption records that a user redeemed a code. The unique index
// enforces at most one redemption per (code, user) pair.
type PromoRedemption struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	Code      string    `json:"code"    gorm:"type:varchar(32);not null;index;uniqueIndex:ux_promo_code_user"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:ux_promo_code_user"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for PromoRedemption.
func (PromoRedemption) TableName() string { return "promo_redemptions" }

// Referral records a one-time attribution: invitee joined via inviter's link.
// The unique index on InviteeID makes attribution idempotent.
type Referral struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	InviterID int64     `json:"inviter_id" gorm:"not null;index"`
	InviteeID int64     `json:"invitee_id" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Referral.
func (Referral) TableName() string { return "referrals" }
