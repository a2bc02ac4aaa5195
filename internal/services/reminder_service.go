// Package services – ReminderService
//
// This file implements the reminder scheduling core: one Run per trigger
// scans every contract still ahead of its renewal date, decides per
// contract whether one of the three tiers (30-day, 7-day, day-of) is newly
// due, delivers the e-mail, and only then records the tier as sent.
//
// Failure policy: a delivery failure is isolated to its contract — it is
// collected into the run summary and processing continues. Only the initial
// candidate fetch can fail the run as a whole.
//
// Observability: Run is OpenTelemetry-instrumented; the span carries the
// candidate count and the number of reminders sent.
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/renewalradar/go-renewal-backend/internal/domain"
	"github.com/renewalradar/go-renewal-backend/internal/mail"
	"github.com/renewalradar/go-renewal-backend/internal/repo"
)

// dateOnly is the wire format for calendar dates.
const dateOnly = "2006-01-02"

var (
	// remindersSent counts delivered reminders by tier ("30", "7", "0").
	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total number of reminder emails successfully sent, by tier.",
		},
		[]string{"tier"},
	)

	// remindersFailed counts delivery attempts that errored, by tier.
	remindersFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_failed_total",
			Help: "Total number of reminder email deliveries that failed, by tier.",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(remindersSent, remindersFailed)
}

// RunSummary aggregates the outcome of one scheduler run.
type RunSummary struct {
	// RemindersSent counts successfully delivered and recorded reminders.
	RemindersSent int `json:"reminders_sent"`
	// Errors holds one entry per contract whose delivery failed, keyed by
	// contract name and id.
	Errors []string `json:"errors,omitempty"`
}

// ReminderService owns the reminder batch. All date math happens at UTC
// midnight; the same truncated "today" feeds the candidate query and the
// per-contract day diff.
type ReminderService struct {
	DB     *gorm.DB
	Mailer mail.Mailer
}

// Run executes one reminder batch for the given wall-clock time and returns
// the aggregate summary. An error is returned only when the candidate fetch
// itself fails; per-contract delivery failures are reported in the summary.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (RunSummary, error) {
	tr := otel.Tracer("services/ReminderService")
	ctx, span := tr.Start(ctx, "Run",
		trace.WithAttributes(attribute.String("run.date", now.UTC().Format(dateOnly))),
	)
	defer span.End()

	today := domain.Today(now)

	candidates, err := repo.ListDueContracts(ctx, s.DB, today)
	if err != nil {
		return RunSummary{}, fmt.Errorf("fetch due contracts: %w", err)
	}
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	var sum RunSummary
	for i := range candidates {
		c := candidates[i]

		days := domain.DaysUntil(c.RenewalDate, today)
		tier, due := domain.DueTier(days, c)
		if !due {
			continue
		}
		if c.User.Email == "" {
			// No resolvable recipient; nothing to send, flag stays unset.
			continue
		}

		msg := mail.ReminderEmail{
			To:               c.User.Email,
			UserName:         displayNameFor(c.User),
			ContractName:     c.Name,
			VendorName:       c.VendorName,
			RenewalDate:      c.RenewalDate.Format(dateOnly),
			DaysUntilRenewal: days,
			NoticePeriodDays: c.NoticePeriodDays,
			AutoRenews:       c.AutoRenews,
			ContractID:       c.ID,
		}

		if err := s.Mailer.SendReminder(ctx, msg); err != nil {
			remindersFailed.WithLabelValues(strconv.Itoa(int(tier))).Inc()
			sum.Errors = append(sum.Errors, fmt.Sprintf("contract %s (%s): %v", c.Name, c.ID, err))
			_ = repo.AppendReminderLog(ctx, s.DB, c.ID, tier, c.User.Email,
				domain.ReminderStatusFailed, err.Error(), time.Now().UTC())
			continue
		}

		// Send-then-record: the flag transitions only after confirmed
		// delivery. The compare-and-set keeps overlapping runs from both
		// recording the same tier; the losing run still sent a duplicate,
		// which is the accepted failure mode.
		won, err := repo.MarkReminderSent(ctx, s.DB, c.ID, tier)
		if err != nil {
			sum.Errors = append(sum.Errors, fmt.Sprintf("contract %s (%s): mark sent: %v", c.Name, c.ID, err))
			continue
		}
		_ = repo.AppendReminderLog(ctx, s.DB, c.ID, tier, c.User.Email,
			domain.ReminderStatusSent, "", time.Now().UTC())
		if won {
			remindersSent.WithLabelValues(strconv.Itoa(int(tier))).Inc()
			sum.RemindersSent++
		}
	}

	span.SetAttributes(attribute.Int("reminders.sent", sum.RemindersSent))
	return sum, nil
}

// displayNameFor prefers the stored name and falls back to a name derived
// from the e-mail address.
func displayNameFor(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return mail.DisplayName(u.Email)
}
