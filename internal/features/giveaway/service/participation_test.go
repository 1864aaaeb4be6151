package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

func TestOnReactionIgnoresUnknownMessage(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	h := NewParticipationHandler(newTestService(repo, m), repo)

	ref := giveaway.MessageRef{ChatID: -100, MessageID: 1}
	require.NoError(t, h.OnReaction(context.Background(), ref, participant(1, 30)))
	assert.Empty(t, m.retracted)
	assert.Empty(t, m.notified)
}

func TestOnReactionRejectsIneligible(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	h := NewParticipationHandler(newTestService(repo, m), repo)

	g := expiredGiveaway("g1")
	g.EndsAt = time.Now().Add(time.Hour)
	g.Condition = "account age 30"
	repo.put(g)

	newcomer := participant(7, 10)
	ref := g.MessageRef()
	require.NoError(t, h.OnReaction(context.Background(), ref, newcomer))

	// The reaction is retracted and the user told why.
	assert.Equal(t, []int64{7}, m.retracted)
	assert.Contains(t, m.notified[7], "account age 30")
	assert.Nil(t, repo.get("g1").WinnerID)
}

func TestOnReactionAcceptsEligible(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	h := NewParticipationHandler(newTestService(repo, m), repo)

	g := expiredGiveaway("g1")
	g.EndsAt = time.Now().Add(time.Hour)
	g.Condition = "account age 30"
	repo.put(g)

	require.NoError(t, h.OnReaction(context.Background(), g.MessageRef(), participant(7, 40)))
	assert.Empty(t, m.retracted)
	assert.Empty(t, m.notified)
}

func TestOnReactionAfterDeadlineTriggersResolution(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	late := participant(7, 40)
	m.participants = []giveaway.Participant{late}
	h := NewParticipationHandler(newTestService(repo, m), repo)

	// Deadline already passed but the scanner has not swept yet. The late
	// reaction itself resolves the giveaway and is still in the draw.
	g := expiredGiveaway("g1")
	repo.put(g)

	require.NoError(t, h.OnReaction(context.Background(), g.MessageRef(), late))

	final := repo.get("g1")
	require.NotNil(t, final.WinnerID)
	assert.Equal(t, late.ID, *final.WinnerID)
}

func TestOnReactionIgnoresResolved(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	h := NewParticipationHandler(newTestService(repo, m), repo)

	g := expiredGiveaway("g1")
	winner := int64(3)
	g.WinnerID = &winner
	repo.put(g)

	require.NoError(t, h.OnReaction(context.Background(), g.MessageRef(), participant(7, 40)))
	assert.Zero(t, m.fetchCalls)
}
