package service

import (
	"time"

	"github.com/samber/lo"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/condition"
)

// SelectWinner filters candidates by the optional eligibility condition,
// excludes the bot's own account and draws one winner uniformly at random.
// It is a pure function of its arguments; intn supplies the randomness so
// selection is reproducible under test.
func SelectWinner(candidates []giveaway.Participant, cond *condition.Condition, selfID int64, now time.Time, intn func(n int) int) (giveaway.Participant, bool) {
	eligible := lo.Filter(candidates, func(p giveaway.Participant, _ int) bool {
		if p.ID == selfID {
			return false
		}
		if cond != nil && !condition.Evaluate(*cond, p, now) {
			return false
		}
		return true
	})

	if len(eligible) == 0 {
		return giveaway.Participant{}, false
	}
	return eligible[intn(len(eligible))], true
}
