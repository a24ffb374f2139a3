package dbtypes

import "testing"

func TestOfferingListValueNil(t *testing.T) {
	var list OfferingList
	v, err := list.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != "[]" {
		t.Fatalf("expected empty json array, got %v", v)
	}
}

func TestOfferingListScanPreservesOrder(t *testing.T) {
	var list OfferingList
	raw := []byte(`[{"icon":"a","title":"First","price":"price_1"},{"title":"Second"}]`)
	if err := list.Scan(raw); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(list) != 2 || list[0].Title != "First" || list[1].Title != "Second" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list[0].Price != "price_1" || list[1].Price != "" {
		t.Fatalf("unexpected prices %+v", list)
	}
}

func TestOfferingListScanRejectsUnknownType(t *testing.T) {
	var list OfferingList
	if err := list.Scan(42); err == nil {
		t.Fatal("expected error for int source")
	}
}
