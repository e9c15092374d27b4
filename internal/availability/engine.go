// Package availability decides whether a reservation request can be
// satisfied from inventory. It is pure computation over snapshots: the
// caller loads the current requests, loading windows and repair
// holdbacks and passes them in. No locking happens at this layer; a
// best-effort check followed by a non-atomic write is the accepted
// design, so two near-simultaneous submissions can both pass.
package availability

import (
	"fmt"
	"time"

	"github.com/aguilarm/mobiliario/internal/model"
)

// Snapshot is a one-shot read of everything the check needs.
type Snapshot struct {
	Articles map[int64]model.Article
	Requests []model.Request // items populated
	Windows  []model.LoadingWindow
	Holdback map[int64]int // article id -> units under repair/review
}

// Conflict kinds.
const (
	ConflictRequest       = "request"
	ConflictLoadingWindow = "loading-window"
)

// Conflict describes one competing hold on an article.
type Conflict struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	EventName string    `json:"event_name,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes,omitempty"`
}

// Shortfall reports the first article that cannot be satisfied.
type Shortfall struct {
	ArticleID   int64      `json:"article_id"`
	ArticleName string     `json:"article_name"`
	Requested   int        `json:"requested"`
	Available   int        `json:"available"`
	Conflicts   []Conflict `json:"conflicts"`
}

// Result is the outcome of an availability check. An unavailable
// result is a normal negative answer, not an error.
type Result struct {
	Available bool       `json:"available"`
	Shortfall *Shortfall `json:"shortfall,omitempty"`
}

// Check evaluates whether the candidate request's quantities are
// available in its window. Line items are evaluated in order and the
// first shortfall wins; remaining items are not inspected. The
// candidate itself is excluded from the conflict set (edits re-check
// against everyone else), zero and negative quantities are ignored,
// and requests in a non-blocking status never hold inventory.
func Check(candidate *model.Request, snap Snapshot) (Result, error) {
	candStart, candEnd, err := candidate.Window()
	if err != nil {
		return Result{}, err
	}

	for _, item := range candidate.Items {
		if item.Quantity <= 0 {
			continue
		}

		article, ok := snap.Articles[item.ArticleID]
		if !ok {
			return Result{}, fmt.Errorf("unknown article %d", item.ArticleID)
		}

		base := article.Quantity - snap.Holdback[item.ArticleID]

		reserved := 0
		var conflicts []Conflict

		for i := range snap.Requests {
			other := &snap.Requests[i]
			if candidate.ID != 0 && other.ID == candidate.ID {
				continue
			}
			if !model.Blocks(other.Status) {
				continue
			}

			otherStart, otherEnd, err := other.Window()
			if err != nil {
				// The snapshot is a moving target; tolerate records
				// with malformed windows instead of failing the check.
				continue
			}
			if !model.Overlaps(candStart, candEnd, otherStart, otherEnd) {
				continue
			}

			held := 0
			for _, oi := range other.Items {
				if oi.ArticleID == item.ArticleID && !oi.Released && oi.Quantity > 0 {
					held += oi.Quantity
				}
			}
			if held == 0 {
				continue
			}

			reserved += held
			conflicts = append(conflicts, Conflict{
				Kind:      ConflictRequest,
				ID:        other.ID,
				EventName: other.EventName,
				Start:     otherStart,
				End:       otherEnd,
				Quantity:  held,
			})
		}

		for _, w := range snap.Windows {
			if w.ArticleID != item.ArticleID {
				continue
			}
			if !model.Overlaps(candStart, candEnd, w.StartAt, w.EndAt) {
				continue
			}

			// A loading window blocks the entire stock, not a partial
			// quantity.
			reserved += article.Quantity
			conflicts = append(conflicts, Conflict{
				Kind:     ConflictLoadingWindow,
				ID:       w.ID,
				Start:    w.StartAt,
				End:      w.EndAt,
				Quantity: article.Quantity,
				Notes:    w.Notes,
			})
		}

		if available := base - reserved; item.Quantity > available {
			return Result{
				Available: false,
				Shortfall: &Shortfall{
					ArticleID:   item.ArticleID,
					ArticleName: article.Name,
					Requested:   item.Quantity,
					Available:   available,
					Conflicts:   conflicts,
				},
			}, nil
		}
	}

	return Result{Available: true}, nil
}
