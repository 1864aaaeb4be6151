package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

// ReactionRegistry tracks which users currently hold the opt-in reaction on
// an announcement message. The Bot API reports reaction changes as events
// but cannot enumerate reactors, so the registry is the source the engine
// reads the candidate list from.
type ReactionRegistry struct {
	client *redis.Client
}

func NewReactionRegistry(client *redis.Client) *ReactionRegistry {
	return &ReactionRegistry{client: client}
}

func reactionKey(ref giveaway.MessageRef) string {
	return fmt.Sprintf("reactions:%d:%d", ref.ChatID, ref.MessageID)
}

func (r *ReactionRegistry) Add(ctx context.Context, ref giveaway.MessageRef, userID int64) error {
	return r.client.SAdd(ctx, reactionKey(ref), userID).Err()
}

func (r *ReactionRegistry) Remove(ctx context.Context, ref giveaway.MessageRef, userID int64) error {
	return r.client.SRem(ctx, reactionKey(ref), userID).Err()
}

// Members returns the current reactor set.
func (r *ReactionRegistry) Members(ctx context.Context, ref giveaway.MessageRef) ([]int64, error) {
	raw, err := r.client.SMembers(ctx, reactionKey(ref)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reaction set: %w", err)
	}

	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Clear drops the set after a giveaway is resolved.
func (r *ReactionRegistry) Clear(ctx context.Context, ref giveaway.MessageRef) error {
	return r.client.Del(ctx, reactionKey(ref)).Err()
}
