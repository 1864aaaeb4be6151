package service

import (
	"fmt"
	"strings"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

const timeLayout = "02/01/2006 15:04:05 MST"

func announcementText(g *giveaway.Giveaway) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 <b>%s</b>\n", g.Title)
	if g.Description != "" {
		fmt.Fprintf(&b, "%s\n", g.Description)
	}
	fmt.Fprintf(&b, "\nPrize: <b>%s</b>\n", g.Prize)
	fmt.Fprintf(&b, "Ends at: %s\n", g.EndsAt.UTC().Format(timeLayout))
	if g.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", g.Condition)
	}
	fmt.Fprintf(&b, "\nReact with %s to enter!", Emoji)
	return b.String()
}

func resultText(g *giveaway.Giveaway, winner giveaway.Participant, winnerID int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 <b>%s</b>\n", g.Title)
	fmt.Fprintf(&b, "\nPrize: <b>%s</b>\n", g.Prize)
	if winnerID == giveaway.NoWinnerID {
		b.WriteString("\nNo one won the giveaway: there were no eligible participants.")
	} else {
		fmt.Fprintf(&b, "\n%s won the giveaway!", mention(winner))
	}
	return b.String()
}

func winnerDMText(g *giveaway.Giveaway) string {
	return fmt.Sprintf("🎉 You won <b>%s</b>!\nPrize: <b>%s</b>", g.Title, g.Prize)
}

func rejectionText(cond string) string {
	return fmt.Sprintf("You don't meet the condition of this giveaway: <b>%s</b>", cond)
}

func mention(p giveaway.Participant) string {
	name := p.Username
	if name == "" {
		name = fmt.Sprintf("user %d", p.ID)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, p.ID, name)
}
