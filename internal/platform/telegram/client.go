package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/timelessnesses/giveaway-bot/internal/common/logger"
	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

const apiBase = "https://api.telegram.org/bot"

// ReactionSource is the registry of users currently holding the opt-in
// reaction per announcement message. The Bot API cannot enumerate reactors,
// so the update poller feeds this registry and FetchParticipants reads it.
type ReactionSource interface {
	Add(ctx context.Context, ref giveaway.MessageRef, userID int64) error
	Remove(ctx context.Context, ref giveaway.MessageRef, userID int64) error
	Members(ctx context.Context, ref giveaway.MessageRef) ([]int64, error)
	Clear(ctx context.Context, ref giveaway.MessageRef) error
}

// Client is a thin Telegram Bot API client covering the calls the giveaway
// engine needs.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
	reactions  ReactionSource
	logger     zerolog.Logger

	selfID   int64
	selfName string
}

func NewClient(token string, reactions ReactionSource) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 35 * time.Second},
		token:      token,
		baseURL:    apiBase,
		reactions:  reactions,
		logger:     logger.With("telegram"),
	}
}

type apiResponse struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	var body bytes.Buffer
	if params != nil {
		if err := json.NewEncoder(&body).Encode(params); err != nil {
			return fmt.Errorf("failed to encode %s params: %w", method, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.token+"/"+method, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !api.Ok {
		return fmt.Errorf("telegram %s: %s (code %d)", method, api.Description, api.ErrorCode)
	}
	if out != nil {
		if err := json.Unmarshal(api.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

type user struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username"`
}

type message struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

type chatMember struct {
	Status string `json:"status"`
	User   user   `json:"user"`
}

type reactionType struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// Connect resolves the bot's own identity. Must be called before the client
// is used as a Messenger.
func (c *Client) Connect(ctx context.Context) error {
	var me user
	if err := c.call(ctx, "getMe", nil, &me); err != nil {
		return fmt.Errorf("failed to identify bot: %w", err)
	}
	c.selfID = me.ID
	c.selfName = me.Username
	c.logger.Info().Int64("id", me.ID).Str("username", me.Username).Msg("Connected to Telegram")
	return nil
}

// Self returns the bot's own user id, excluded from winner selection.
func (c *Client) Self() int64 { return c.selfID }

// SendAnnouncement posts the giveaway message and seeds the opt-in reaction
// on it, mirroring how a user would enter.
func (c *Client) SendAnnouncement(ctx context.Context, chatID int64, text string, emoji string) (giveaway.MessageRef, error) {
	var msg message
	params := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if err := c.call(ctx, "sendMessage", params, &msg); err != nil {
		return giveaway.MessageRef{}, err
	}

	ref := giveaway.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID}

	seed := map[string]interface{}{
		"chat_id":    ref.ChatID,
		"message_id": ref.MessageID,
		"reaction":   []reactionType{{Type: "emoji", Emoji: emoji}},
	}
	if err := c.call(ctx, "setMessageReaction", seed, nil); err != nil {
		// The announcement exists; a missing seed reaction only costs UX.
		c.logger.Warn().Err(err).Int64("chat_id", ref.ChatID).Msg("Failed to seed reaction")
	}

	return ref, nil
}

func (c *Client) EditMessage(ctx context.Context, ref giveaway.MessageRef, text string) error {
	params := map[string]interface{}{
		"chat_id":    ref.ChatID,
		"message_id": ref.MessageID,
		"text":       text,
		"parse_mode": "HTML",
	}
	return c.call(ctx, "editMessageText", params, nil)
}

// FetchParticipants resolves the current reaction set into a candidate list
// with the attributes the eligibility evaluator needs.
func (c *Client) FetchParticipants(ctx context.Context, ref giveaway.MessageRef, emoji string) ([]giveaway.Participant, error) {
	ids, err := c.reactions.Members(ctx, ref)
	if err != nil {
		return nil, err
	}

	participants := make([]giveaway.Participant, 0, len(ids))
	for _, id := range ids {
		p, err := c.ResolveParticipant(ctx, ref.ChatID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve participant %d: %w", id, err)
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// ResolveParticipant looks up a chat member and maps it onto the engine's
// participant attributes. Chat admins carry the chat id as a role id, which
// is what "role <chatId>" conditions match against.
func (c *Client) ResolveParticipant(ctx context.Context, chatID, userID int64) (giveaway.Participant, error) {
	var member chatMember
	params := map[string]interface{}{"chat_id": chatID, "user_id": userID}
	if err := c.call(ctx, "getChatMember", params, &member); err != nil {
		return giveaway.Participant{}, err
	}

	p := giveaway.Participant{
		ID:        member.User.ID,
		Username:  member.User.Username,
		IsBot:     member.User.IsBot,
		CreatedAt: EstimateCreatedAt(member.User.ID),
	}
	if member.Status == "administrator" || member.Status == "creator" {
		p.RoleIDs = []int64{chatID}
	}
	return p, nil
}

// RetractReaction revokes an opt-in. Bots cannot remove another user's
// reaction through the API, so removal from the registry is what makes the
// revocation effective: the user is no longer part of the candidate set.
func (c *Client) RetractReaction(ctx context.Context, ref giveaway.MessageRef, p giveaway.Participant, emoji string) error {
	return c.reactions.Remove(ctx, ref, p.ID)
}

// IsChatAdmin reports whether the user administers the chat. Giveaway
// creation is restricted to chat admins.
func (c *Client) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	var member chatMember
	params := map[string]interface{}{"chat_id": chatID, "user_id": userID}
	if err := c.call(ctx, "getChatMember", params, &member); err != nil {
		return false, err
	}
	return member.Status == "administrator" || member.Status == "creator", nil
}

// Cleanup drops the tracked reaction state for a resolved giveaway.
func (c *Client) Cleanup(ctx context.Context, ref giveaway.MessageRef) error {
	return c.reactions.Clear(ctx, ref)
}

// Notify sends a direct message to a user.
func (c *Client) Notify(ctx context.Context, userID int64, text string) error {
	params := map[string]interface{}{
		"chat_id":    userID,
		"text":       text,
		"parse_mode": "HTML",
	}
	return c.call(ctx, "sendMessage", params, nil)
}
