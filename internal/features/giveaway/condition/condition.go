// Package condition compiles giveaway eligibility expressions into a small
// AST and evaluates them against participant attributes.
//
// Grammar (space-separated tokens, case-sensitive keywords):
//
//	everyone
//	role <roleId>
//	not role <roleId>
//	account age <days>
//	not account age <days>
package condition

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/timelessnesses/giveaway-bot/internal/domain/giveaway"
)

type Kind uint8

const (
	Everyone Kind = iota
	RoleIs
	RoleIsNot
	AccountAgeAtLeast
	AccountAgeLessThan
)

// Condition is a compiled eligibility predicate.
type Condition struct {
	Kind   Kind
	RoleID int64
	Days   int
}

// SyntaxError reports an expression that does not match the grammar. It is
// surfaced to the giveaway creator at creation time; an invalid condition is
// never persisted.
type SyntaxError struct {
	Input  string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%q is not a valid condition: %s", e.Input, e.Reason)
}

func (c Condition) String() string {
	switch c.Kind {
	case Everyone:
		return "everyone"
	case RoleIs:
		return fmt.Sprintf("role %d", c.RoleID)
	case RoleIsNot:
		return fmt.Sprintf("not role %d", c.RoleID)
	case AccountAgeAtLeast:
		return fmt.Sprintf("account age %d", c.Days)
	case AccountAgeLessThan:
		return fmt.Sprintf("not account age %d", c.Days)
	}
	return ""
}

// Parse compiles an expression. The empty string is not valid; callers treat
// an absent condition as "everyone" before reaching the parser.
func Parse(input string) (Condition, error) {
	tokens := strings.Fields(input)

	switch {
	case len(tokens) == 1 && tokens[0] == "everyone":
		return Condition{Kind: Everyone}, nil

	case len(tokens) == 2 && tokens[0] == "role":
		id, err := strconv.ParseInt(tokens[1], 10, 64)
		if err != nil {
			return Condition{}, &SyntaxError{Input: input, Reason: fmt.Sprintf("%q is not a role id", tokens[1])}
		}
		return Condition{Kind: RoleIs, RoleID: id}, nil

	case len(tokens) == 3 && tokens[0] == "not" && tokens[1] == "role":
		id, err := strconv.ParseInt(tokens[2], 10, 64)
		if err != nil {
			return Condition{}, &SyntaxError{Input: input, Reason: fmt.Sprintf("%q is not a role id", tokens[2])}
		}
		return Condition{Kind: RoleIsNot, RoleID: id}, nil

	case len(tokens) == 3 && tokens[0] == "account" && tokens[1] == "age":
		days, err := parseDays(tokens[2])
		if err != nil {
			return Condition{}, &SyntaxError{Input: input, Reason: err.Error()}
		}
		return Condition{Kind: AccountAgeAtLeast, Days: days}, nil

	case len(tokens) == 4 && tokens[0] == "not" && tokens[1] == "account" && tokens[2] == "age":
		days, err := parseDays(tokens[3])
		if err != nil {
			return Condition{}, &SyntaxError{Input: input, Reason: err.Error()}
		}
		return Condition{Kind: AccountAgeLessThan, Days: days}, nil
	}

	return Condition{}, &SyntaxError{Input: input, Reason: "unrecognized syntax"}
}

// Validate parses the expression and discards the result. Used to fail fast
// at creation time.
func Validate(input string) error {
	_, err := Parse(input)
	return err
}

// Evaluate interprets the condition against a participant at the given
// instant. It is a pure function of its arguments.
func Evaluate(c Condition, p giveaway.Participant, now time.Time) bool {
	switch c.Kind {
	case Everyone:
		return true
	case RoleIs:
		return lo.Contains(p.RoleIDs, c.RoleID)
	case RoleIsNot:
		return !lo.Contains(p.RoleIDs, c.RoleID)
	case AccountAgeAtLeast:
		return accountAgeDays(p, now) >= c.Days
	case AccountAgeLessThan:
		return accountAgeDays(p, now) < c.Days
	}
	return false
}

func accountAgeDays(p giveaway.Participant, now time.Time) int {
	if p.CreatedAt.IsZero() {
		return 0
	}
	return int(now.Sub(p.CreatedAt).Hours() / 24)
}

func parseDays(token string) (int, error) {
	days, err := strconv.Atoi(token)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("%q is not a day count", token)
	}
	return days, nil
}
