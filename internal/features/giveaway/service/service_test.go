package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/condition"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/models"
)

func validCreate() *models.GiveawayCreate {
	return &models.GiveawayCreate{
		OwnerID:  1,
		ChatID:   -100,
		Title:    "Nitro drop",
		Prize:    "1 month of Nitro",
		Duration: "1h",
	}
}

func TestCreate(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, m, WithClock(func() time.Time { return start }))

	g, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, start, g.StartedAt)
	assert.Equal(t, start.Add(time.Hour), g.EndsAt)
	assert.Equal(t, int64(3600), g.Duration)
	assert.Nil(t, g.WinnerID)
	assert.Equal(t, giveaway.StatusActive, g.Status())

	// The announcement message ref is recorded for later participant lookup.
	assert.NotZero(t, g.MessageID)
	require.Len(t, m.sent, 1)
	assert.Contains(t, m.sent[0], "Nitro drop")

	stored := repo.get(g.ID)
	assert.Equal(t, g.MessageID, stored.MessageID)
}

func TestCreateWithCondition(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	svc := NewService(repo, m)

	input := validCreate()
	input.Condition = "account age 30"
	g, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "account age 30", g.Condition)
}

func TestCreateRejectsInvalidCondition(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	svc := NewService(repo, m)

	input := validCreate()
	input.Condition = "age over 9000"
	_, err := svc.Create(context.Background(), input)

	var syntaxErr *condition.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)

	// Nothing announced, nothing persisted.
	assert.Empty(t, m.sent)
	assert.Empty(t, repo.giveaways)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	svc := NewService(repo, m)

	for name, mutate := range map[string]func(*models.GiveawayCreate){
		"empty title":    func(in *models.GiveawayCreate) { in.Title = "" },
		"empty prize":    func(in *models.GiveawayCreate) { in.Prize = "" },
		"short duration": func(in *models.GiveawayCreate) { in.Duration = "3s" },
		"bad duration":   func(in *models.GiveawayCreate) { in.Duration = "soon" },
	} {
		t.Run(name, func(t *testing.T) {
			input := validCreate()
			mutate(input)
			_, err := svc.Create(context.Background(), input)
			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
	assert.Empty(t, m.sent)
}

func TestCreateRequiresChatAdmin(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	m.nonAdmins[1] = true
	svc := NewService(repo, m)

	_, err := svc.Create(context.Background(), validCreate())
	require.ErrorIs(t, err, ErrNotAuthorized)
	assert.Empty(t, m.sent)
	assert.Empty(t, repo.giveaways)
}

func TestCreateAnnouncementFailure(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	m.sendErr = errors.New("chat not found")
	svc := NewService(repo, m)

	_, err := svc.Create(context.Background(), validCreate())
	require.Error(t, err)
	assert.Empty(t, repo.giveaways)
}

func TestForceEnd(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	m.participants = []giveaway.Participant{participant(4, 30)}
	svc := newTestService(repo, m)

	// Still an hour to go; force end resolves it anyway.
	g := expiredGiveaway("g1")
	g.EndsAt = time.Now().Add(time.Hour)
	repo.put(g)

	ended, err := svc.ForceEnd(context.Background(), "g1")
	require.NoError(t, err)
	require.NotNil(t, ended.WinnerID)
	assert.Equal(t, int64(4), *ended.WinnerID)
	assert.Equal(t, giveaway.StatusEnded, ended.Status())
	// The original deadline is kept; the actual end instant is separate.
	assert.Equal(t, g.EndsAt.Unix(), ended.EndsAt.Unix())
}

func TestForceEndAlreadyResolved(t *testing.T) {
	repo := newFakeRepo()
	m := newFakeMessenger(botID)
	svc := newTestService(repo, m)

	g := expiredGiveaway("g1")
	winner := int64(4)
	g.WinnerID = &winner
	repo.put(g)

	_, err := svc.ForceEnd(context.Background(), "g1")
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestForceEndNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), newFakeMessenger(botID))
	_, err := svc.ForceEnd(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeMessenger(botID))

	repo.put(expiredGiveaway("g1"))

	g, err := svc.GetStatus(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, giveaway.StatusActive, g.Status())

	_, err = svc.GetStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
