package models

import (
	"fmt"
	"strings"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
	maxPrizeLength       = 200
)

// ValidationError reports a rejected creation parameter. It is returned to
// the requester synchronously; no state is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GiveawayCreate is the input of the create operation. Duration is the raw
// time expression; Condition is empty when the giveaway is open to everyone.
type GiveawayCreate struct {
	OwnerID     int64  `json:"owner_id"`
	ChatID      int64  `json:"chat_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Prize       string `json:"prize"`
	Duration    string `json:"duration"`
	Condition   string `json:"condition,omitempty"`
}

// Validate checks the display fields and the duration expression. The
// condition expression is validated separately by the condition package.
func (in *GiveawayCreate) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "cannot be empty"}
	}
	if len(in.Title) > maxTitleLength {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("cannot exceed %d characters", maxTitleLength)}
	}
	if len(in.Description) > maxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("cannot exceed %d characters", maxDescriptionLength)}
	}
	if strings.TrimSpace(in.Prize) == "" {
		return &ValidationError{Field: "prize", Reason: "cannot be empty"}
	}
	if len(in.Prize) > maxPrizeLength {
		return &ValidationError{Field: "prize", Reason: fmt.Sprintf("cannot exceed %d characters", maxPrizeLength)}
	}
	if in.ChatID == 0 {
		return &ValidationError{Field: "chat_id", Reason: "cannot be zero"}
	}

	d, err := ParseDuration(in.Duration)
	if err != nil {
		return err
	}
	if d < giveaway.MinDuration {
		return &ValidationError{Field: "duration", Reason: fmt.Sprintf("must be at least %s", giveaway.MinDuration)}
	}

	return nil
}
