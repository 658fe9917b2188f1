// Package telegram adapts the Bot API to the messaging interfaces the
// scheduler and services consume. Channels may be addressed by @username or
// by numeric chat id; deletions always use the numeric id captured from the
// send response, since the API will not delete by username.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/t-lnarr/muradoff/internal/domain"
)

// Client wraps a Bot API connection.
type Client struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

// New authenticates against the Bot API. timeout bounds every outbound call
// at the HTTP client level; the Bot API itself takes no context.
func New(token string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	log = log.With().Str("component", "telegram").Logger()
	log.Info().Str("bot", bot.Self.UserName).Msg("bot authenticated")
	return &Client{bot: bot, log: log}, nil
}

// SendText posts a text message to a channel.
func (c *Client) SendText(ctx context.Context, channel, text string) (domain.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.MessageRef{}, err
	}
	msg := tgbotapi.MessageConfig{
		BaseChat: baseChat(channel),
		Text:     text,
	}
	sent, err := c.bot.Send(msg)
	if err != nil {
		return domain.MessageRef{}, err
	}
	return ref(sent), nil
}

// SendPhoto posts a photo by file id to a channel.
func (c *Client) SendPhoto(ctx context.Context, channel, photoRef, caption string) (domain.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.MessageRef{}, err
	}
	msg := tgbotapi.PhotoConfig{
		BaseFile: tgbotapi.BaseFile{
			BaseChat: baseChat(channel),
			File:     tgbotapi.FileID(photoRef),
		},
		Caption: caption,
	}
	sent, err := c.bot.Send(msg)
	if err != nil {
		return domain.MessageRef{}, err
	}
	return ref(sent), nil
}

// DeleteMessage removes a previously sent message.
func (c *Client) DeleteMessage(ctx context.Context, r domain.MessageRef) error {
	if r.IsZero() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Request(tgbotapi.NewDeleteMessage(r.ChatID, r.MessageID))
	return err
}

// Notify sends a private message to a user without blocking the caller.
// Failures (user blocked the bot, never started it) are logged and dropped.
func (c *Client) Notify(userID int64, text string) {
	go func() {
		if _, err := c.bot.Send(tgbotapi.NewMessage(userID, text)); err != nil {
			c.log.Debug().Err(err).Int64("user_id", userID).Msg("notification failed")
		}
	}()
}

// baseChat resolves a channel string to a Bot API chat target.
func baseChat(channel string) tgbotapi.BaseChat {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return tgbotapi.BaseChat{ChatID: id}
	}
	if !strings.HasPrefix(channel, "@") {
		channel = "@" + channel
	}
	return tgbotapi.BaseChat{ChannelUsername: channel}
}

func ref(m tgbotapi.Message) domain.MessageRef {
	return domain.MessageRef{ChatID: m.Chat.ID, MessageID: m.MessageID}
}
