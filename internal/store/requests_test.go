package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/aguilarm/mobiliario/internal/db"
	"github.com/aguilarm/mobiliario/internal/model"
)

func seedRequest(t *testing.T) (*sql.DB, *model.User, *model.Article, *model.Request) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "requester", "req@centro.example", "x", model.RoleUser)
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	cat, _ := CreateCategory(ctx, database, "Mobiliario")
	article, _ := CreateArticle(ctx, database, "Folding Chair", cat.ID, 100)

	req, err := CreateRequest(ctx, database, &model.Request{
		EventName:   "Expo",
		RequesterID: user.ID,
		StartDate:   "2024-06-10",
		StartTime:   "08:00",
		EndDate:     "2024-06-10",
		EndTime:     "18:00",
		Items: []model.LineItem{
			{ArticleID: article.ID, Quantity: 10, Observations: "stage area"},
			{ArticleID: article.ID, Quantity: 0}, // dropped
		},
	})
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	return database, user, article, req
}

func TestCreateRequestDefaults(t *testing.T) {
	_, user, _, req := seedRequest(t)

	if req.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", req.Status)
	}
	if req.Reference == "" {
		t.Error("expected a generated reference code")
	}
	if req.RequesterName != user.Username {
		t.Errorf("requester name = %q", req.RequesterName)
	}
	if len(req.Items) != 1 {
		t.Fatalf("zero-quantity items must be dropped, got %d items", len(req.Items))
	}
	if req.Items[0].ArticleName != "Folding Chair" {
		t.Errorf("item article name = %q", req.Items[0].ArticleName)
	}
}

func TestListRequestsFilters(t *testing.T) {
	database, user, article, req := seedRequest(t)
	ctx := context.Background()

	other, _ := CreateUser(ctx, database, "other", "other@centro.example", "x", model.RoleUser)
	CreateRequest(ctx, database, &model.Request{
		EventName:   "Concert",
		RequesterID: other.ID,
		StartDate:   "2024-07-01",
		EndDate:     "2024-07-01",
		Items:       []model.LineItem{{ArticleID: article.ID, Quantity: 5}},
	})

	all, err := ListRequests(ctx, database, "", 0)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 requests, got %d", len(all))
	}

	mine, err := ListRequests(ctx, database, "", user.ID)
	if err != nil {
		t.Fatalf("ListRequests by requester: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != req.ID {
		t.Errorf("requester filter returned %d requests", len(mine))
	}

	if err := ApproveRequest(ctx, database, req.ID, user.ID, ""); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}
	approved, err := ListRequests(ctx, database, model.StatusApproved, 0)
	if err != nil {
		t.Fatalf("ListRequests by status: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != req.ID {
		t.Errorf("status filter returned %d requests", len(approved))
	}
}

func TestUpdateRequestReplacesItems(t *testing.T) {
	database, _, article, req := seedRequest(t)
	ctx := context.Background()

	req.EventName = "Expo v2"
	req.Items = []model.LineItem{{ArticleID: article.ID, Quantity: 25}}

	updated, err := UpdateRequest(ctx, database, req)
	if err != nil {
		t.Fatalf("UpdateRequest: %v", err)
	}
	if updated.EventName != "Expo v2" {
		t.Errorf("event name = %q", updated.EventName)
	}
	if len(updated.Items) != 1 || updated.Items[0].Quantity != 25 {
		t.Errorf("items = %+v", updated.Items)
	}
}

func TestUpdateRequestOnlyPending(t *testing.T) {
	database, user, _, req := seedRequest(t)
	ctx := context.Background()

	if err := ApproveRequest(ctx, database, req.ID, user.ID, ""); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	if _, err := UpdateRequest(ctx, database, req); err == nil {
		t.Error("updating an approved request must fail")
	}
}

func TestRejectRequestReleasesItems(t *testing.T) {
	database, user, _, req := seedRequest(t)
	ctx := context.Background()

	if err := RejectRequest(ctx, database, req.ID, user.ID, "no stock"); err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}

	got, err := GetRequest(ctx, database, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.Status != model.StatusRejected {
		t.Errorf("status = %q", got.Status)
	}
	if got.DecidedBy == nil || *got.DecidedBy != user.ID {
		t.Errorf("decided_by = %v", got.DecidedBy)
	}
	if got.DecisionComment != "no stock" {
		t.Errorf("comment = %q", got.DecisionComment)
	}
	for _, it := range got.Items {
		if !it.Released {
			t.Error("line item not released")
		}
	}
}

func TestDeleteRequestCascades(t *testing.T) {
	database, _, _, req := seedRequest(t)
	ctx := context.Background()

	if err := DeleteRequest(ctx, database, req.ID); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}

	got, err := GetRequest(ctx, database, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got != nil {
		t.Error("request survived deletion")
	}

	var items int
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM request_items WHERE request_id = ?`, req.ID).Scan(&items); err != nil {
		t.Fatalf("counting items: %v", err)
	}
	if items != 0 {
		t.Errorf("%d orphaned line items", items)
	}
}

func TestReleaseLineItem(t *testing.T) {
	database, _, article, req := seedRequest(t)
	ctx := context.Background()

	if err := ReleaseLineItem(ctx, database, req.ID, article.ID); err != nil {
		t.Fatalf("ReleaseLineItem: %v", err)
	}

	got, _ := GetRequest(ctx, database, req.ID)
	if !got.Items[0].Released {
		t.Error("line item not released")
	}
}
