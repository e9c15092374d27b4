package lifecycle

import (
	"testing"

	"github.com/aguilarm/mobiliario/internal/model"
)

func TestRecipientsGeneralFallback(t *testing.T) {
	req := &model.Request{
		RequesterEmail: "req@centro.example",
		Items:          []model.LineItem{{CategoryID: 1, Quantity: 2}},
	}
	kinds := map[int64]model.Kind{1: model.KindOther}
	pools := map[string][]string{
		model.PoolGeneral:        {"general@centro.example"},
		model.PoolInfrastructure: {"infra@centro.example"},
	}

	got := Recipients(req, kinds, pools)
	want := []string{"req@centro.example", "general@centro.example"}
	if len(got) != len(want) {
		t.Fatalf("Recipients = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Recipients[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecipientsSpecializedSuppressesGeneral(t *testing.T) {
	req := &model.Request{
		RequesterEmail: "req@centro.example",
		Items: []model.LineItem{
			{CategoryID: 1, Quantity: 1},
			{CategoryID: 2, Quantity: 1},
		},
	}
	kinds := map[int64]model.Kind{
		1: model.KindInfrastructure,
		2: model.KindAreasAndSetup,
	}
	pools := map[string][]string{
		model.PoolGeneral:        {"general@centro.example"},
		model.PoolInfrastructure: {"infra@centro.example"},
		model.PoolAreas:          {"areas@centro.example"},
	}

	got := Recipients(req, kinds, pools)
	for _, e := range got {
		if e == "general@centro.example" {
			t.Error("general pool must be suppressed when a specialized pool matched")
		}
	}

	has := func(addr string) bool {
		for _, e := range got {
			if e == addr {
				return true
			}
		}
		return false
	}
	if !has("infra@centro.example") || !has("areas@centro.example") {
		t.Errorf("expected both specialized pools, got %v", got)
	}
}

func TestRecipientsDeduplicatesAndDropsEmpty(t *testing.T) {
	req := &model.Request{
		RequesterEmail: "shared@centro.example",
		Items:          []model.LineItem{{CategoryID: 1, Quantity: 1}},
	}
	kinds := map[int64]model.Kind{1: model.KindInfrastructure}
	pools := map[string][]string{
		model.PoolInfrastructure: {"shared@centro.example", "", "  ", "infra@centro.example"},
	}

	got := Recipients(req, kinds, pools)
	want := []string{"shared@centro.example", "infra@centro.example"}
	if len(got) != len(want) {
		t.Fatalf("Recipients = %v, want %v", got, want)
	}
}

func TestRecipientsEmptySet(t *testing.T) {
	req := &model.Request{}
	got := Recipients(req, nil, nil)
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}
