package validator

import (
	"errors"
	"fmt"
)

// Challenge is the read-only view of the catalogue the dispatcher needs:
// which rule applies and what a solve is worth. Callers build it from the
// stored challenge record.
type Challenge struct {
	ID     string
	Points int
}

// Result is the verdict for one submission. It is never persisted here;
// storing it is the caller's job.
type Result struct {
	Correct      bool   `json:"is_correct"`
	Message      string `json:"message"`
	PointsEarned int    `json:"points_earned"`
}

// ErrUnknownChallenge is returned when no rule exists for a challenge ID.
// Callers surface it as a not-found condition.
var ErrUnknownChallenge = errors.New("unknown challenge")

// rule is a pure predicate over a submission payload. Rules read only the
// fields they expect and treat anything missing or mistyped as a miss.
type rule func(payload map[string]any) bool

// Evaluate dispatches the payload to the rule registered for the challenge.
// Every call is stateless; identical inputs always produce identical results.
func Evaluate(challenge Challenge, payload map[string]any) (Result, error) {
	check, ok := rules[challenge.ID]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownChallenge, challenge.ID)
	}

	if check(payload) {
		return Result{
			Correct:      true,
			Message:      "Correct! Challenge solved.",
			PointsEarned: challenge.Points,
		}, nil
	}

	return Result{
		Correct: false,
		Message: "Incorrect. Keep trying!",
	}, nil
}

// KnownChallenge reports whether a rule exists for the given ID.
func KnownChallenge(id string) bool {
	_, ok := rules[id]
	return ok
}

// field returns the named payload value if it is a string, "" otherwise.
// A missing or mistyped field can never equal an expected value, so rules
// fail closed without ever panicking.
func field(payload map[string]any, key string) string {
	value, ok := payload[key].(string)
	if !ok {
		return ""
	}
	return value
}
