package ledger

import (
	"context"
	"fmt"

	"vouch/pkg/platform/sentinel"
)

// DefaultMaxAttempts bounds how often an optimistic backend re-runs a
// transaction that lost a commit race.
const DefaultMaxAttempts = 8

// Retry calls attempt until it succeeds, fails with an error that is not a
// commit race, or maxAttempts is reached. Exhaustion returns sentinel.ErrConflict.
func Retry(ctx context.Context, maxAttempts int, isRace func(error) bool, attempt func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	var last error
	for i := 0; i < maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = attempt()
		if last == nil || !isRace(last) {
			return last
		}
	}
	return fmt.Errorf("%w: transaction retries exhausted: %v", sentinel.ErrConflict, last)
}
