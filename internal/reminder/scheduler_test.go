package reminder

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aguilarm/mobiliario/internal/db"
	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// Monday 2024-06-03; six business days later is 2024-06-11.
var monday = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

const targetDate = "2024-06-11"

type recorder struct {
	mu   sync.Mutex
	fail bool
	sent []mailer.Message
}

func (r *recorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type fixture struct {
	db        *sql.DB
	furniture int64 // article in a regular category
	lift      int64 // article in the infrastructure category
	requester int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, database, "requester", "req@centro.example", "x", model.RoleUser)
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	furnitureCat, _ := store.CreateCategory(ctx, database, "Mobiliario")
	infraCat, _ := store.CreateCategory(ctx, database, "Infraestructura")
	chair, _ := store.CreateArticle(ctx, database, "Folding Chair", furnitureCat.ID, 100)
	lift, _ := store.CreateArticle(ctx, database, "Scissor Lift", infraCat.ID, 4)

	if _, err := store.AddPoolEntry(ctx, database, model.PoolFurniture, "furniture@centro.example"); err != nil {
		t.Fatalf("adding pool entry: %v", err)
	}
	if _, err := store.AddPoolEntry(ctx, database, model.PoolInfrastructure, "infra@centro.example"); err != nil {
		t.Fatalf("adding pool entry: %v", err)
	}

	return &fixture{db: database, furniture: chair.ID, lift: lift.ID, requester: user.ID}
}

func (f *fixture) addRequest(t *testing.T, startDate string, items ...model.LineItem) *model.Request {
	t.Helper()
	req, err := store.CreateRequest(context.Background(), f.db, &model.Request{
		EventName:   "Expo",
		RequesterID: f.requester,
		StartDate:   startDate,
		EndDate:     startDate,
		Items:       items,
	})
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	return req
}

func TestRunWeekendIsNoOp(t *testing.T) {
	f := setup(t)
	f.addRequest(t, targetDate, model.LineItem{ArticleID: f.furniture, Quantity: 5})
	rec := &recorder{}

	saturday := time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC)
	sum, err := Run(context.Background(), f.db, rec, saturday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Matched != 0 || rec.count() != 0 {
		t.Errorf("weekend run did work: %+v, %d mails", sum, rec.count())
	}
}

func TestRunSendsFurnitureReminder(t *testing.T) {
	f := setup(t)
	req := f.addRequest(t, targetDate, model.LineItem{ArticleID: f.furniture, Quantity: 5})
	f.addRequest(t, "2024-06-20", model.LineItem{ArticleID: f.furniture, Quantity: 5})
	rec := &recorder{}

	sum, err := Run(context.Background(), f.db, rec, monday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Matched != 1 || sum.Sent != 1 || sum.Failed != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 mail, got %d", rec.count())
	}
	if rec.sent[0].To[0] != "furniture@centro.example" {
		t.Errorf("recipient = %v", rec.sent[0].To)
	}
	if !strings.Contains(rec.sent[0].HTML, "Folding Chair") {
		t.Error("reminder body missing line items")
	}

	sent, err := store.ReminderSent(context.Background(), f.db, req.ID, model.MilestoneUpcoming, model.PoolFurniture)
	if err != nil || !sent {
		t.Errorf("sent marker not persisted: %v %v", sent, err)
	}
}

func TestRunMixedRequestHitsBothPools(t *testing.T) {
	f := setup(t)
	f.addRequest(t, targetDate,
		model.LineItem{ArticleID: f.furniture, Quantity: 5},
		model.LineItem{ArticleID: f.lift, Quantity: 1})
	rec := &recorder{}

	sum, err := Run(context.Background(), f.db, rec, monday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Sent != 2 {
		t.Errorf("sent = %d, want 2", sum.Sent)
	}

	got := make(map[string]bool)
	for _, msg := range rec.sent {
		got[msg.To[0]] = true
	}
	if !got["furniture@centro.example"] || !got["infra@centro.example"] {
		t.Errorf("pools reached: %v", got)
	}
}

func TestRunZeroItemRequestFallsBackToFurniture(t *testing.T) {
	f := setup(t)
	rec := &recorder{}

	// Normal creation refuses empty requests, but old rows can end up
	// itemless after every line item is removed. Seed one directly.
	_, err := f.db.ExecContext(context.Background(),
		`INSERT INTO requests (reference, event_name, requester_id, start_date, end_date, status)
		 VALUES ('ref-empty', 'Expo', ?, ?, ?, ?)`,
		f.requester, targetDate, targetDate, model.StatusPending,
	)
	if err != nil {
		t.Fatalf("seeding request: %v", err)
	}

	sum, err := Run(context.Background(), f.db, rec, monday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Sent != 1 || rec.count() != 1 {
		t.Fatalf("summary = %+v, %d mails", sum, rec.count())
	}
	if rec.sent[0].To[0] != "furniture@centro.example" {
		t.Errorf("recipient = %v", rec.sent[0].To)
	}
}

func TestRunDeduplicatesPoolRecipients(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	// Pool entries carry no uniqueness constraint, so the same address
	// can be registered twice.
	if _, err := store.AddPoolEntry(ctx, f.db, model.PoolFurniture, "furniture@centro.example"); err != nil {
		t.Fatalf("adding duplicate pool entry: %v", err)
	}
	req := f.addRequest(t, targetDate, model.LineItem{ArticleID: f.furniture, Quantity: 5})
	rec := &recorder{}

	sum, err := Run(ctx, f.db, rec, monday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Sent != 1 || rec.count() != 1 {
		t.Fatalf("summary = %+v, %d mails", sum, rec.count())
	}
	if got := rec.sent[0].To; len(got) != 1 || got[0] != "furniture@centro.example" {
		t.Errorf("To = %v, want the address once", got)
	}

	marks, err := store.ListReminderMarks(ctx, f.db, req.ID)
	if err != nil {
		t.Fatalf("ListReminderMarks: %v", err)
	}
	if len(marks) != 1 {
		t.Fatalf("marks = %d, want 1", len(marks))
	}
	if marks[0].Recipients != "furniture@centro.example" {
		t.Errorf("persisted recipients = %q", marks[0].Recipients)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	f := setup(t)
	f.addRequest(t, targetDate, model.LineItem{ArticleID: f.furniture, Quantity: 5})
	rec := &recorder{}
	ctx := context.Background()

	if _, err := Run(ctx, f.db, rec, monday); err != nil {
		t.Fatalf("first run: %v", err)
	}
	sum, err := Run(ctx, f.db, rec, monday)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Sent != 0 || sum.Skipped != 1 {
		t.Errorf("second run summary = %+v", sum)
	}
	if rec.count() != 1 {
		t.Errorf("duplicate reminder sent, %d mails total", rec.count())
	}
}

func TestRunSkipsNonBlockingRequests(t *testing.T) {
	f := setup(t)
	req := f.addRequest(t, targetDate, model.LineItem{ArticleID: f.furniture, Quantity: 5})
	ctx := context.Background()
	if err := store.RejectRequest(ctx, f.db, req.ID, f.requester, "off"); err != nil {
		t.Fatalf("rejecting: %v", err)
	}
	rec := &recorder{}

	sum, err := Run(ctx, f.db, rec, monday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Matched != 0 || rec.count() != 0 {
		t.Errorf("rejected request was reminded: %+v", sum)
	}
}

func TestRunFailureDoesNotMarkOrAbort(t *testing.T) {
	f := setup(t)
	req := f.addRequest(t, targetDate, model.LineItem{ArticleID: f.furniture, Quantity: 5})
	f.addRequest(t, targetDate, model.LineItem{ArticleID: f.furniture, Quantity: 3})
	rec := &recorder{fail: true}
	ctx := context.Background()

	sum, err := Run(ctx, f.db, rec, monday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Failed != 2 || sum.Sent != 0 {
		t.Errorf("summary = %+v", sum)
	}

	sent, err := store.ReminderSent(ctx, f.db, req.ID, model.MilestoneUpcoming, model.PoolFurniture)
	if err != nil {
		t.Fatalf("ReminderSent: %v", err)
	}
	if sent {
		t.Error("failed send was marked as sent")
	}

	// The next run retries and succeeds.
	rec.fail = false
	sum, err = Run(ctx, f.db, rec, monday)
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if sum.Sent != 2 {
		t.Errorf("retry summary = %+v", sum)
	}
}
