package telegram

import (
	"context"
	"time"

	"github.com/timelessnesses/giveaway-bot/internal/common/logger"
	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

// ReactionSink receives opt-in events from the update stream.
type ReactionSink interface {
	OnReaction(ctx context.Context, ref giveaway.MessageRef, p giveaway.Participant) error
}

type update struct {
	UpdateID        int64                   `json:"update_id"`
	MessageReaction *messageReactionUpdated `json:"message_reaction,omitempty"`
}

type messageReactionUpdated struct {
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	MessageID   int64          `json:"message_id"`
	User        *user          `json:"user,omitempty"`
	OldReaction []reactionType `json:"old_reaction"`
	NewReaction []reactionType `json:"new_reaction"`
}

// Poller long-polls getUpdates for reaction changes, keeps the reaction
// registry current and forwards new opt-ins to the sink.
type Poller struct {
	client  *Client
	sink    ReactionSink
	emoji   string
	timeout time.Duration
	offset  int64
}

func NewPoller(client *Client, sink ReactionSink, emoji string, timeout time.Duration) *Poller {
	return &Poller{
		client:  client,
		sink:    sink,
		emoji:   emoji,
		timeout: timeout,
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	log := logger.With("telegram-poller")
	log.Info().Msg("Starting update poller")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Update poller stopped")
			return ctx.Err()
		default:
		}

		updates, err := p.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, u := range updates {
			p.offset = u.UpdateID + 1
			if u.MessageReaction == nil {
				continue
			}
			if err := p.handleReaction(ctx, u.MessageReaction); err != nil {
				log.Error().Err(err).
					Int64("chat_id", u.MessageReaction.Chat.ID).
					Int64("message_id", u.MessageReaction.MessageID).
					Msg("Failed to handle reaction update")
			}
		}
	}
}

func (p *Poller) fetch(ctx context.Context) ([]update, error) {
	params := map[string]interface{}{
		"offset":          p.offset,
		"timeout":         int(p.timeout.Seconds()),
		"allowed_updates": []string{"message_reaction"},
	}

	var updates []update
	if err := p.client.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (p *Poller) handleReaction(ctx context.Context, ev *messageReactionUpdated) error {
	if ev.User == nil {
		// Anonymous chat reactions cannot enter giveaways.
		return nil
	}

	ref := giveaway.MessageRef{ChatID: ev.Chat.ID, MessageID: ev.MessageID}
	had := containsEmoji(ev.OldReaction, p.emoji)
	has := containsEmoji(ev.NewReaction, p.emoji)

	switch {
	case has && !had:
		if err := p.client.reactions.Add(ctx, ref, ev.User.ID); err != nil {
			return err
		}
		participant, err := p.client.ResolveParticipant(ctx, ref.ChatID, ev.User.ID)
		if err != nil {
			// Fall back to the attributes carried by the update itself.
			participant = giveaway.Participant{
				ID:        ev.User.ID,
				Username:  ev.User.Username,
				IsBot:     ev.User.IsBot,
				CreatedAt: EstimateCreatedAt(ev.User.ID),
			}
		}
		return p.sink.OnReaction(ctx, ref, participant)

	case had && !has:
		return p.client.reactions.Remove(ctx, ref, ev.User.ID)
	}

	return nil
}

func containsEmoji(reactions []reactionType, emoji string) bool {
	for _, r := range reactions {
		if r.Type == "emoji" && r.Emoji == emoji {
			return true
		}
	}
	return false
}
