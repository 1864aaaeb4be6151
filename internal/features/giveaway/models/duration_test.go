package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelessnesses/giveaway-bot/internal/features/giveaway/models"
)

func TestParseDuration(t *testing.T) {
	testCases := []struct {
		expr string
		want time.Duration
	}{
		{"30", 30 * time.Second},
		{"5s", 5 * time.Second},
		{"10m", 10 * time.Minute},
		{"2h", 2 * time.Hour},
		{"1d", 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1mo", 30 * 24 * time.Hour},
		{"1y", 365 * 24 * time.Hour},
		{" 45s ", 45 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := models.ParseDuration(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDurationRejectsMalformed(t *testing.T) {
	for _, expr := range []string{"", "abc", "s", "-5s", "0", "0s", "1.5h", "5 s", "1x"} {
		t.Run(expr, func(t *testing.T) {
			_, err := models.ParseDuration(expr)
			require.Error(t, err)

			var vErr *models.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "duration", vErr.Field)
		})
	}
}

func TestGiveawayCreateValidate(t *testing.T) {
	valid := models.GiveawayCreate{
		OwnerID:     100,
		ChatID:      -1001,
		Title:       "Weekly drop",
		Description: "React to enter",
		Prize:       "Nitro",
		Duration:    "1d",
	}
	require.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		mutate func(*models.GiveawayCreate)
		field  string
	}{
		{"empty title", func(in *models.GiveawayCreate) { in.Title = "  " }, "title"},
		{"empty prize", func(in *models.GiveawayCreate) { in.Prize = "" }, "prize"},
		{"zero chat", func(in *models.GiveawayCreate) { in.ChatID = 0 }, "chat_id"},
		{"malformed duration", func(in *models.GiveawayCreate) { in.Duration = "soon" }, "duration"},
		{"too short duration", func(in *models.GiveawayCreate) { in.Duration = "4s" }, "duration"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)

			var vErr *models.ValidationError
			require.ErrorAs(t, in.Validate(), &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}
