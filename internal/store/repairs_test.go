package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/aguilarm/mobiliario/internal/db"
	"github.com/aguilarm/mobiliario/internal/model"
)

func seedArticle(t *testing.T) (*sql.DB, *model.Article) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	cat, _ := CreateCategory(ctx, database, "Infraestructura")
	article, err := CreateArticle(ctx, database, "Generator", cat.ID, 10)
	if err != nil {
		t.Fatalf("creating article: %v", err)
	}
	return database, article
}

func TestCreateRepairHoldback(t *testing.T) {
	database, article := seedArticle(t)
	ctx := context.Background()

	if _, err := CreateRepair(ctx, database, article.ID, "GEN-01", "WO-100", 3, nil); err != nil {
		t.Fatalf("CreateRepair: %v", err)
	}
	if _, err := CreateRepair(ctx, database, article.ID, "GEN-02", "WO-101", 2, nil); err != nil {
		t.Fatalf("CreateRepair: %v", err)
	}

	holdbacks, err := ArticleHoldbacks(ctx, database)
	if err != nil {
		t.Fatalf("ArticleHoldbacks: %v", err)
	}
	if holdbacks[article.ID] != 5 {
		t.Errorf("holdback = %d, want 5", holdbacks[article.ID])
	}

	// The article's derived under_review mirrors the holdback.
	got, _ := GetArticle(ctx, database, article.ID)
	if got.UnderReview != 5 {
		t.Errorf("under_review = %d, want 5", got.UnderReview)
	}
}

func TestCreateRepairRejectsNonPositiveRevision(t *testing.T) {
	database, article := seedArticle(t)

	if _, err := CreateRepair(context.Background(), database, article.ID, "", "", 0, nil); err == nil {
		t.Error("zero revision accepted")
	}
}

func TestFinalizeRepairValidation(t *testing.T) {
	database, article := seedArticle(t)
	ctx := context.Background()

	repair, _ := CreateRepair(ctx, database, article.ID, "GEN-01", "WO-100", 3, nil)

	if err := FinalizeRepair(ctx, database, repair.ID, 2, 2); err == nil {
		t.Error("outcome exceeding revision accepted")
	}
	if err := FinalizeRepair(ctx, database, repair.ID, -1, 0); err == nil {
		t.Error("negative outcome accepted")
	}

	if err := FinalizeRepair(ctx, database, repair.ID, 2, 1); err != nil {
		t.Fatalf("FinalizeRepair: %v", err)
	}

	got, _ := GetRepair(ctx, database, repair.ID)
	if got.Status != model.RepairStatusFinalized {
		t.Errorf("status = %q", got.Status)
	}
	if got.RepairedCount != 2 || got.DiscardedCount != 1 {
		t.Errorf("counts = %d/%d", got.RepairedCount, got.DiscardedCount)
	}
	if got.FinalizedAt == nil {
		t.Error("finalized_at not set")
	}

	// A finalized repair cannot be finalized again.
	if err := FinalizeRepair(ctx, database, repair.ID, 1, 0); err == nil {
		t.Error("double finalize accepted")
	}
}

func TestApproveRepairFullyResolved(t *testing.T) {
	database, article := seedArticle(t)
	ctx := context.Background()

	repair, _ := CreateRepair(ctx, database, article.ID, "GEN-01", "WO-100", 3, nil)
	if err := FinalizeRepair(ctx, database, repair.ID, 2, 1); err != nil {
		t.Fatalf("FinalizeRepair: %v", err)
	}

	handovers, err := ApproveRepair(ctx, database, repair.ID)
	if err != nil {
		t.Fatalf("ApproveRepair: %v", err)
	}
	if len(handovers) != 3 {
		t.Fatalf("expected 3 handovers, got %d", len(handovers))
	}

	dispositions := map[string]int{}
	for _, h := range handovers {
		dispositions[h.Disposition]++
	}
	if dispositions[model.DispositionRepaired] != 2 || dispositions[model.DispositionDiscarded] != 1 {
		t.Errorf("dispositions = %v", dispositions)
	}

	// Fully resolved repairs disappear and the holdback with them.
	gone, _ := GetRepair(ctx, database, repair.ID)
	if gone != nil {
		t.Error("fully resolved repair still exists")
	}

	// Discarded units permanently reduce the owned stock.
	got, _ := GetArticle(ctx, database, article.ID)
	if got.Quantity != 9 {
		t.Errorf("quantity = %d, want 9", got.Quantity)
	}
	if got.UnderReview != 0 {
		t.Errorf("under_review = %d, want 0", got.UnderReview)
	}
}

func TestApproveRepairShrinksOutstanding(t *testing.T) {
	database, article := seedArticle(t)
	ctx := context.Background()

	repair, _ := CreateRepair(ctx, database, article.ID, "GEN-01", "WO-100", 5, nil)
	if err := FinalizeRepair(ctx, database, repair.ID, 2, 0); err != nil {
		t.Fatalf("FinalizeRepair: %v", err)
	}

	if _, err := ApproveRepair(ctx, database, repair.ID); err != nil {
		t.Fatalf("ApproveRepair: %v", err)
	}

	// Three units remain outstanding: the repair shrinks and goes back
	// under evaluation.
	got, _ := GetRepair(ctx, database, repair.ID)
	if got == nil {
		t.Fatal("repair with outstanding units was deleted")
	}
	if got.Revision != 3 || got.Status != model.RepairStatusEvaluation {
		t.Errorf("repair = revision %d status %q", got.Revision, got.Status)
	}
	if got.RepairedCount != 0 || got.DiscardedCount != 0 {
		t.Errorf("outcome counts not reset: %d/%d", got.RepairedCount, got.DiscardedCount)
	}

	holdbacks, _ := ArticleHoldbacks(ctx, database)
	if holdbacks[article.ID] != 3 {
		t.Errorf("holdback = %d, want 3", holdbacks[article.ID])
	}
}

func TestApproveRepairRequiresFinalized(t *testing.T) {
	database, article := seedArticle(t)
	ctx := context.Background()

	repair, _ := CreateRepair(ctx, database, article.ID, "GEN-01", "WO-100", 3, nil)
	if _, err := ApproveRepair(ctx, database, repair.ID); err == nil {
		t.Error("approving an evaluation-stage repair accepted")
	}
}

func TestSetHandoverNotes(t *testing.T) {
	database, article := seedArticle(t)
	ctx := context.Background()

	repair, _ := CreateRepair(ctx, database, article.ID, "GEN-01", "WO-100", 1, nil)
	FinalizeRepair(ctx, database, repair.ID, 1, 0)
	handovers, err := ApproveRepair(ctx, database, repair.ID)
	if err != nil || len(handovers) != 1 {
		t.Fatalf("ApproveRepair: %v (%d handovers)", err, len(handovers))
	}

	if err := SetHandoverNotes(ctx, database, handovers[0].ID, "passed inspection"); err != nil {
		t.Fatalf("SetHandoverNotes: %v", err)
	}

	got, _ := ListHandovers(ctx, database, repair.ID)
	if len(got) != 1 || got[0].Notes != "passed inspection" {
		t.Errorf("handovers = %+v", got)
	}
}
