package delivery

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/aguilarm/mobiliario/internal/db"
	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

func fullChecklist() model.Checklist {
	cl := make(model.Checklist, len(model.ChecklistItems))
	for _, item := range model.ChecklistItems {
		cl[item] = model.ChecklistAnswer{Condition: model.ConditionGood}
	}
	return cl
}

func setup(t *testing.T) (*sql.DB, *model.User, *model.Request, int64) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, database, "admin", "admin@centro.example", "x", model.RoleAdmin)
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	requester, err := store.CreateUser(ctx, database, "requester", "req@centro.example", "x", model.RoleUser)
	if err != nil {
		t.Fatalf("creating requester: %v", err)
	}

	cat, _ := store.CreateCategory(ctx, database, "Mobiliario")
	article, _ := store.CreateArticle(ctx, database, "Scissor Lift", cat.ID, 4)

	req, err := store.CreateRequest(ctx, database, &model.Request{
		EventName:   "Expo",
		RequesterID: requester.ID,
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-12",
		EndTime:     "18:00",
		Items:       []model.LineItem{{ArticleID: article.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	return database, admin, req, article.ID
}

func handoffSubmission(req *model.Request, articleID int64) *Submission {
	return &Submission{
		RequestID:             req.ID,
		ArticleID:             articleID,
		Phase:                 model.PhaseHandoff,
		RecipientName:         "Ana Torres",
		OperatorName:          "Luis Mena",
		OperatorPhone:         "555-0101",
		Checklist:             fullChecklist(),
		Signature:             []byte("sig"),
		SignatureMime:         "image/png",
		OperatorSignature:     []byte("opsig"),
		OperatorSignatureMime: "image/png",
	}
}

func TestValidateChecklist(t *testing.T) {
	if err := ValidateChecklist(fullChecklist()); err != nil {
		t.Fatalf("complete checklist rejected: %v", err)
	}

	missing := fullChecklist()
	delete(missing, "battery")
	if err := ValidateChecklist(missing); err == nil {
		t.Error("missing item accepted")
	}

	deficient := fullChecklist()
	deficient["leaks"] = model.ChecklistAnswer{Condition: model.ConditionDeficient}
	if err := ValidateChecklist(deficient); err == nil {
		t.Error("deficient item without comment accepted")
	}
	deficient["leaks"] = model.ChecklistAnswer{Condition: model.ConditionDeficient, Comment: "hydraulic drip"}
	if err := ValidateChecklist(deficient); err != nil {
		t.Errorf("deficient item with comment rejected: %v", err)
	}

	bogus := fullChecklist()
	bogus["lights"] = model.ChecklistAnswer{Condition: "fine"}
	if err := ValidateChecklist(bogus); err == nil {
		t.Error("unknown condition accepted")
	}

	extra := fullChecklist()
	extra["rocket_booster"] = model.ChecklistAnswer{Condition: model.ConditionGood}
	if err := ValidateChecklist(extra); err == nil {
		t.Error("unknown item accepted")
	}
}

func TestSaveHandoff(t *testing.T) {
	database, admin, req, articleID := setup(t)
	ctx := context.Background()

	rec, err := Save(ctx, database, mailer.Log{}, handoffSubmission(req, articleID), admin, time.Now())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == 0 {
		t.Error("record not persisted")
	}
	if rec.RecipientName != "Ana Torres" || rec.OperatorPhone != "555-0101" {
		t.Errorf("record fields lost: %+v", rec)
	}

	sig, mime, err := store.GetDeliverySignature(ctx, database, req.ID, articleID, model.PhaseHandoff, true)
	if err != nil {
		t.Fatalf("GetDeliverySignature: %v", err)
	}
	if string(sig) != "opsig" || mime != "image/png" {
		t.Errorf("operator signature = %q (%s)", sig, mime)
	}
}

func TestSaveHandoffRequiresOperator(t *testing.T) {
	database, admin, req, articleID := setup(t)
	ctx := context.Background()

	sub := handoffSubmission(req, articleID)
	sub.OperatorSignature = nil
	if _, err := Save(ctx, database, mailer.Log{}, sub, admin, time.Now()); err == nil {
		t.Error("handoff without operator signature accepted")
	}

	sub = handoffSubmission(req, articleID)
	sub.OperatorPhone = ""
	if _, err := Save(ctx, database, mailer.Log{}, sub, admin, time.Now()); err == nil {
		t.Error("handoff without operator phone accepted")
	}
}

func TestSaveReceiptMinimalFields(t *testing.T) {
	database, admin, req, articleID := setup(t)
	ctx := context.Background()

	sub := &Submission{
		RequestID:     req.ID,
		ArticleID:     articleID,
		Phase:         model.PhaseReceipt,
		RecipientName: "Ana Torres",
		Checklist:     fullChecklist(),
		Signature:     []byte("sig"),
		SignatureMime: "image/png",
	}
	if _, err := Save(ctx, database, mailer.Log{}, sub, admin, time.Now()); err != nil {
		t.Fatalf("receipt without operator fields rejected: %v", err)
	}
}

func TestPhaseImmutableForNonAdmins(t *testing.T) {
	database, admin, req, articleID := setup(t)
	ctx := context.Background()

	staff, err := store.CreateUser(ctx, database, "staff", "staff@centro.example", "x", model.RoleInfrastructure)
	if err != nil {
		t.Fatalf("creating staff: %v", err)
	}

	if _, err := Save(ctx, database, mailer.Log{}, handoffSubmission(req, articleID), staff, time.Now()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	_, err = Save(ctx, database, mailer.Log{}, handoffSubmission(req, articleID), staff, time.Now())
	if err == nil || !strings.Contains(err.Error(), "already recorded") {
		t.Errorf("non-admin overwrite accepted, err = %v", err)
	}

	// Admin override replaces the record.
	sub := handoffSubmission(req, articleID)
	sub.RecipientName = "Marta Ruiz"
	rec, err := Save(ctx, database, mailer.Log{}, sub, admin, time.Now())
	if err != nil {
		t.Fatalf("admin overwrite: %v", err)
	}
	if rec.RecipientName != "Marta Ruiz" {
		t.Errorf("recipient = %q after overwrite", rec.RecipientName)
	}
}

func TestHandoffClearsReceipt(t *testing.T) {
	database, admin, req, articleID := setup(t)
	ctx := context.Background()

	if _, err := Save(ctx, database, mailer.Log{}, handoffSubmission(req, articleID), admin, time.Now()); err != nil {
		t.Fatalf("handoff: %v", err)
	}

	receipt := &Submission{
		RequestID:     req.ID,
		ArticleID:     articleID,
		Phase:         model.PhaseReceipt,
		RecipientName: "Ana Torres",
		Checklist:     fullChecklist(),
		Signature:     []byte("sig"),
	}
	if _, err := Save(ctx, database, mailer.Log{}, receipt, admin, time.Now()); err != nil {
		t.Fatalf("receipt: %v", err)
	}

	// Admin re-records the handoff, which must invalidate the receipt.
	if _, err := Save(ctx, database, mailer.Log{}, handoffSubmission(req, articleID), admin, time.Now()); err != nil {
		t.Fatalf("second handoff: %v", err)
	}

	gone, err := store.GetDeliveryRecord(ctx, database, req.ID, articleID, model.PhaseReceipt)
	if err != nil {
		t.Fatalf("GetDeliveryRecord: %v", err)
	}
	if gone != nil {
		t.Error("receipt survived a new handoff")
	}
}

func TestEarlyRelease(t *testing.T) {
	database, admin, req, articleID := setup(t)
	ctx := context.Background()

	_, end, err := req.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}

	sub := handoffSubmission(req, articleID)
	sub.EarlyRelease = true
	rec, err := Save(ctx, database, mailer.Log{}, sub, admin, end.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !rec.EarlyRelease {
		t.Error("early release flag not recorded")
	}

	got, err := store.GetRequest(ctx, database, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if !got.Items[0].Released {
		t.Error("line item not released")
	}
}

func TestEarlyReleaseIgnoredAfterWindowEnd(t *testing.T) {
	database, admin, req, articleID := setup(t)
	ctx := context.Background()

	_, end, err := req.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}

	sub := handoffSubmission(req, articleID)
	sub.EarlyRelease = true
	rec, err := Save(ctx, database, mailer.Log{}, sub, admin, end.Add(time.Hour))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.EarlyRelease {
		t.Error("early release applied after the scheduled end")
	}

	got, err := store.GetRequest(ctx, database, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.Items[0].Released {
		t.Error("line item released after the scheduled end")
	}
}

func TestArticleMustBeOnRequest(t *testing.T) {
	database, admin, req, articleID := setup(t)
	ctx := context.Background()

	sub := handoffSubmission(req, articleID)
	sub.ArticleID = articleID + 99
	if _, err := Save(ctx, database, mailer.Log{}, sub, admin, time.Now()); err == nil {
		t.Error("off-request article accepted")
	}
}
