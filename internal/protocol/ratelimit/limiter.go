package ratelimit

import (
	"vouch/internal/protocol/models"
)

// CheckAndConsume applies one proof submission to rec under cfg at now (unix
// seconds). It returns the updated record; rec itself is never modified, so a
// rejection leaves no trace and the caller persists the result only when the
// enclosing operation commits.
func CheckAndConsume(rec models.RateLimit, cfg *models.Config, now int64) (models.RateLimit, error) {
	if cooldownLeft(rec, cfg, now) > 0 {
		return rec, models.ErrRateLimitCooldown
	}

	// Lazy rolling window: it restarts at the first submission after a full day.
	if now-rec.DayStart >= models.SecondsPerDay {
		rec.DayStart = now
		rec.ProofsToday = 0
	}

	if rec.ProofsToday >= cfg.MaxProofsPerDay {
		return rec, models.ErrDailyRateLimitExceeded
	}

	proofsToday, err := models.IncU32(rec.ProofsToday)
	if err != nil {
		return rec, err
	}
	total, err := models.AddU64(rec.TotalProofs, 1)
	if err != nil {
		return rec, err
	}
	rec.ProofsToday = proofsToday
	rec.TotalProofs = total
	rec.LastProofAt = now
	return rec, nil
}

// RetryAfter reports how many seconds remain before rec may submit again, or
// zero when a submission at now would pass the cooldown and daily checks.
func RetryAfter(rec models.RateLimit, cfg *models.Config, now int64) int64 {
	wait := cooldownLeft(rec, cfg, now)
	if now-rec.DayStart < models.SecondsPerDay && rec.ProofsToday >= cfg.MaxProofsPerDay {
		if untilReset := rec.DayStart + models.SecondsPerDay - now; untilReset > wait {
			wait = untilReset
		}
	}
	return wait
}

// cooldownLeft is the remaining cooldown in seconds. A wallet that has never
// submitted has no previous proof to cool down from.
func cooldownLeft(rec models.RateLimit, cfg *models.Config, now int64) int64 {
	if rec.TotalProofs == 0 {
		return 0
	}
	elapsed := now - rec.LastProofAt
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= cfg.CooldownSeconds {
		return 0
	}
	return cfg.CooldownSeconds - elapsed
}
