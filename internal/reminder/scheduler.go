// Package reminder implements the daily batch job that mails the
// staff pools about reservations starting six business days out. The
// job is idempotent: a persisted sent marker per request and pool
// survives restarts, so the same reminder is never sent twice.
package reminder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aguilarm/mobiliario/internal/calendar"
	"github.com/aguilarm/mobiliario/internal/lifecycle"
	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// LeadBusinessDays is how far ahead of a reservation's start date the
// reminder fires, counted in business days.
const LeadBusinessDays = 6

// Summary reports how one run went. Failed counts requests where at
// least one pool send failed; those are retried on the next run
// because the marker is only written after a successful send.
type Summary struct {
	Matched int `json:"matched"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Run executes one reminder pass for the wall-clock time now. Weekend
// runs are silent no-ops. Each request is processed independently: a
// failure on one is logged and counted but never aborts the run.
func Run(ctx context.Context, db *sql.DB, m mailer.Mailer, now time.Time) (Summary, error) {
	var sum Summary

	if calendar.IsWeekend(now) {
		return sum, nil
	}
	target := calendar.DateKey(calendar.AddBusinessDays(now, LeadBusinessDays))

	requests, err := store.ListRequests(ctx, db, "", 0)
	if err != nil {
		return sum, fmt.Errorf("loading requests: %w", err)
	}
	categories, err := store.ListCategories(ctx, db)
	if err != nil {
		return sum, fmt.Errorf("loading categories: %w", err)
	}
	pools, err := store.LoadPools(ctx, db)
	if err != nil {
		return sum, fmt.Errorf("loading pools: %w", err)
	}

	kinds := make(map[int64]model.Kind, len(categories))
	for _, c := range categories {
		kinds[c.ID] = model.KindOf(c.Name)
	}

	for i := range requests {
		req := &requests[i]
		if !model.Blocks(req.Status) || req.StartDate != target {
			continue
		}
		sum.Matched++

		ok := true
		for _, pool := range classify(req, kinds) {
			sent, err := remind(ctx, db, m, req, pool, pools[pool])
			if err != nil {
				slog.Error("sending reminder", "request", req.ID, "pool", pool, "error", err)
				ok = false
				continue
			}
			if sent {
				sum.Sent++
			} else {
				sum.Skipped++
			}
		}
		if !ok {
			sum.Failed++
		}
	}

	slog.Info("reminder run finished", "target", target,
		"matched", sum.Matched, "sent", sum.Sent, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// classify resolves which pools a request's reminders go to. Articles
// in the infrastructure category route to the infrastructure pool,
// everything else to the furniture pool. A mixed request belongs to
// both. A request with no line items falls back to the furniture pool.
func classify(req *model.Request, kinds map[int64]model.Kind) []string {
	furniture, infra := false, false
	for _, it := range req.Items {
		if kinds[it.CategoryID] == model.KindInfrastructure {
			infra = true
		} else {
			furniture = true
		}
	}
	if len(req.Items) == 0 {
		furniture = true
	}

	var pools []string
	if furniture {
		pools = append(pools, model.PoolFurniture)
	}
	if infra {
		pools = append(pools, model.PoolInfrastructure)
	}
	return pools
}

// remind sends one pool's reminder for a request, unless it was sent
// before or the pool has no recipients. The sent marker is persisted
// only after a successful send, so failures are retried next run.
func remind(ctx context.Context, db *sql.DB, m mailer.Mailer, req *model.Request, pool string, recipients []string) (bool, error) {
	already, err := store.ReminderSent(ctx, db, req.ID, model.MilestoneUpcoming, pool)
	if err != nil || already {
		return false, err
	}
	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return false, nil
	}

	headline := fmt.Sprintf("This reservation starts in %d business days.", LeadBusinessDays)
	msg := mailer.Message{
		To:      recipients,
		Subject: fmt.Sprintf("Upcoming reservation: %s (%s)", req.EventName, req.StartDate),
		HTML:    lifecycle.RequestHTML(req, headline),
	}
	if err := m.Send(ctx, msg); err != nil {
		return false, err
	}

	if _, err := store.MarkReminderSent(ctx, db, req.ID, model.MilestoneUpcoming, pool, recipients); err != nil {
		return false, err
	}
	return true, nil
}

// dedupe drops duplicate and empty addresses, keeping first-seen order.
// Pool entries carry no uniqueness constraint, so the same address may
// be registered more than once.
func dedupe(emails []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
