package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// Recipients resolves the notification recipient set for a request:
// the requester's own address, the specialized category pools matched
// by the request's articles, and the general pool only when neither
// specialized pool matched. Duplicates and empties are dropped.
func Recipients(req *model.Request, kinds map[int64]model.Kind, pools map[string][]string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(emails ...string) {
		for _, e := range emails {
			e = strings.TrimSpace(e)
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}

	add(req.RequesterEmail)

	hasAreas, hasInfra := false, false
	for _, it := range req.Items {
		switch kinds[it.CategoryID] {
		case model.KindAreasAndSetup:
			hasAreas = true
		case model.KindInfrastructure:
			hasInfra = true
		}
	}

	if hasAreas {
		add(pools[model.PoolAreas]...)
	}
	if hasInfra {
		add(pools[model.PoolInfrastructure]...)
	}
	if !hasAreas && !hasInfra {
		add(pools[model.PoolGeneral]...)
	}

	return out
}

// loadRouting reads the category kinds and pools used for routing.
func loadRouting(ctx context.Context, db *sql.DB) (map[int64]model.Kind, map[string][]string, error) {
	categories, err := store.ListCategories(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	kinds := make(map[int64]model.Kind, len(categories))
	for _, c := range categories {
		kinds[c.ID] = model.KindOf(c.Name)
	}

	pools, err := store.LoadPools(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	return kinds, pools, nil
}

// notify renders and sends a status notification for the request.
// Sending is best-effort: failures are logged and swallowed, since the
// business operation has already committed. An empty recipient set is
// skipped silently.
func notify(ctx context.Context, db *sql.DB, m mailer.Mailer, req *model.Request, subject, headline string) {
	kinds, pools, err := loadRouting(ctx, db)
	if err != nil {
		slog.Error("loading notification routing", "request", req.ID, "error", err)
		return
	}

	to := Recipients(req, kinds, pools)
	if len(to) == 0 {
		return
	}

	msg := mailer.Message{
		To:      to,
		Subject: subject,
		HTML:    RequestHTML(req, headline),
	}
	if err := m.Send(ctx, msg); err != nil {
		slog.Error("sending notification", "request", req.ID, "subject", subject, "error", err)
	}
}

// RequestHTML builds the shared notification body: event,
// window, delivery contact, notes and the itemized line items.
func RequestHTML(req *model.Request, headline string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(headline))
	fmt.Fprintf(&b, "<p><strong>%s</strong> (%s)</p>", html.EscapeString(req.EventName), html.EscapeString(req.Reference))
	fmt.Fprintf(&b, "<p>%s %s &ndash; %s %s</p>",
		req.StartDate, req.StartTime, req.EndDate, req.EndTime)
	if req.DeliveryContact != "" {
		fmt.Fprintf(&b, "<p>Delivery contact: %s</p>", html.EscapeString(req.DeliveryContact))
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(req.Notes))
	}

	b.WriteString("<ul>")
	for _, it := range req.Items {
		fmt.Fprintf(&b, "<li>%d &times; %s", it.Quantity, html.EscapeString(it.ArticleName))
		if it.Observations != "" {
			fmt.Fprintf(&b, " (%s)", html.EscapeString(it.Observations))
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")

	if req.DecisionComment != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(req.DecisionComment))
	}
	return b.String()
}

// NotifyDelivery tells the infrastructure pool that a delivery phase
// was completed for one article of a request. Best-effort.
func NotifyDelivery(ctx context.Context, db *sql.DB, m mailer.Mailer, req *model.Request, articleName, phase string) {
	pools, err := store.LoadPools(ctx, db)
	if err != nil {
		slog.Error("loading notification pools", "request", req.ID, "error", err)
		return
	}

	to := pools[model.PoolInfrastructure]
	if len(to) == 0 {
		return
	}

	subject := fmt.Sprintf("Delivery %s recorded: %s", phase, req.EventName)
	headline := fmt.Sprintf("The %s phase for %s was recorded.", phase, articleName)
	if err := m.Send(ctx, mailer.Message{To: to, Subject: subject, HTML: RequestHTML(req, headline)}); err != nil {
		slog.Error("sending delivery notification", "request", req.ID, "error", err)
	}
}
