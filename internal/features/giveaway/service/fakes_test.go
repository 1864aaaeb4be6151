package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

// fakeRepo is an in-memory Repository with a real compare-and-swap claim,
// good enough to exercise the same race the store-level claim prevents.
type fakeRepo struct {
	mu        sync.Mutex
	giveaways map[string]*giveaway.Giveaway
	claimedAt map[string]time.Time

	insertErr   error
	finalizeErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		giveaways: make(map[string]*giveaway.Giveaway),
		claimedAt: make(map[string]time.Time),
	}
}

func (r *fakeRepo) Insert(_ context.Context, g *giveaway.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	cp := *g
	r.giveaways[g.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*giveaway.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *fakeRepo) FindByMessageID(_ context.Context, chatID, messageID int64) (*giveaway.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.giveaways {
		if g.ChatID == chatID && g.MessageID == messageID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindExpiredUnresolved(_ context.Context, now time.Time) ([]giveaway.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []giveaway.Giveaway
	for _, g := range r.giveaways {
		if g.WinnerID == nil && !g.EndsAt.After(now) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeRepo) ClaimForResolution(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return false, errors.New("no such giveaway")
	}
	if g.WinnerID != nil {
		return false, nil
	}
	marker := giveaway.ClaimMarkerID
	g.WinnerID = &marker
	r.claimedAt[id] = time.Now()
	return true, nil
}

func (r *fakeRepo) FinalizeWinner(_ context.Context, id string, winnerID int64, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalizeErr != nil {
		return r.finalizeErr
	}
	g, ok := r.giveaways[id]
	if !ok {
		return errors.New("no such giveaway")
	}
	if g.WinnerID == nil || *g.WinnerID != giveaway.ClaimMarkerID {
		return errors.New("giveaway not claimed")
	}
	g.WinnerID = &winnerID
	g.EndedAt = &endedAt
	delete(r.claimedAt, id)
	return nil
}

func (r *fakeRepo) FindStaleClaims(_ context.Context, olderThan time.Time) ([]giveaway.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []giveaway.Giveaway
	for id, at := range r.claimedAt {
		if at.Before(olderThan) {
			out = append(out, *r.giveaways[id])
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByStatus(_ context.Context, status giveaway.Status, limit int) ([]giveaway.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []giveaway.Giveaway
	for _, g := range r.giveaways {
		if g.Status() == status {
			out = append(out, *g)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) get(id string) *giveaway.Giveaway {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.giveaways[id]
	return &cp
}

func (r *fakeRepo) put(g *giveaway.Giveaway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.giveaways[g.ID] = &cp
}

// fakeMessenger records outbound platform calls.
type fakeMessenger struct {
	mu           sync.Mutex
	selfID       int64
	participants []giveaway.Participant

	sendErr       error
	fetchErr      error
	fetchFailures int
	fetchCalls    int

	sent      []string
	edits     []string
	retracted []int64
	notified  map[int64]string

	nonAdmins     map[int64]bool
	nextMessageID int64
}

func newFakeMessenger(selfID int64) *fakeMessenger {
	return &fakeMessenger{
		selfID:        selfID,
		notified:      make(map[int64]string),
		nonAdmins:     make(map[int64]bool),
		nextMessageID: 100,
	}
}

func (m *fakeMessenger) Self() int64 { return m.selfID }

func (m *fakeMessenger) SendAnnouncement(_ context.Context, chatID int64, text, _ string) (giveaway.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return giveaway.MessageRef{}, m.sendErr
	}
	m.sent = append(m.sent, text)
	m.nextMessageID++
	return giveaway.MessageRef{ChatID: chatID, MessageID: m.nextMessageID}, nil
}

func (m *fakeMessenger) EditMessage(_ context.Context, _ giveaway.MessageRef, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, text)
	return nil
}

func (m *fakeMessenger) FetchParticipants(_ context.Context, _ giveaway.MessageRef, _ string) ([]giveaway.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	if m.fetchErr != nil && (m.fetchFailures == 0 || m.fetchCalls <= m.fetchFailures) {
		return nil, m.fetchErr
	}
	out := make([]giveaway.Participant, len(m.participants))
	copy(out, m.participants)
	return out, nil
}

func (m *fakeMessenger) RetractReaction(_ context.Context, _ giveaway.MessageRef, p giveaway.Participant, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retracted = append(m.retracted, p.ID)
	return nil
}

func (m *fakeMessenger) Notify(_ context.Context, userID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified[userID] = text
	return nil
}

func (m *fakeMessenger) Cleanup(_ context.Context, _ giveaway.MessageRef) error {
	return nil
}

func (m *fakeMessenger) IsChatAdmin(_ context.Context, _ int64, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.nonAdmins[userID], nil
}

func (m *fakeMessenger) lastEdit() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.edits) == 0 {
		return ""
	}
	return m.edits[len(m.edits)-1]
}
