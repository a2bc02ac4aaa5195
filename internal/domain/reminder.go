// Reminder tier rule.
//
// This file holds the pure scheduling logic: given how many whole days
// remain until a contract's renewal and which reminders were already sent,
// decide whether a reminder is due now and at which tier. It is free of I/O
// so it can be tested exhaustively without a database or mailer.
package domain

import "time"

// Tier identifies one of the three reminder checkpoints, expressed as the
// number of days before the renewal date.
type Tier int

// Reminder tiers, evaluated in the order 30 → 7 → 0.
const (
	Tier30  Tier = 30
	Tier7   Tier = 7
	TierDay Tier = 0
)

// FlagColumn returns the contracts table column that records delivery for
// this tier.
func (t Tier) FlagColumn() string {
	switch t {
	case Tier30:
		return "reminder_30_sent"
	case Tier7:
		return "reminder_7_sent"
	default:
		return "reminder_day_sent"
	}
}

// Today truncates now to midnight UTC. The same truncation feeds both the
// candidate-set query and the per-contract day diff so that day boundaries
// can never disagree between the two.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the whole number of days from today until renewal, with
// both dates truncated to UTC midnight. Negative for past renewals.
func DaysUntil(renewal, today time.Time) int {
	return int(Today(renewal).Sub(Today(today)).Hours() / 24)
}

// DueTier reports which reminder tier, if any, is due for the contract when
// daysUntil days remain. Tiers match exact day boundaries only: a tier whose
// day passes without a run is never sent late, and the candidate query
// upstream already excludes contracts whose renewal date is in the past.
// First match wins; at most one tier can be due per invocation.
func DueTier(daysUntil int, c Contract) (Tier, bool) {
	switch {
	case daysUntil == 30 && !c.Reminder30Sent:
		return Tier30, true
	case daysUntil == 7 && !c.Reminder7Sent:
		return Tier7, true
	case daysUntil == 0 && !c.ReminderDaySent:
		return TierDay, true
	}
	return 0, false
}
