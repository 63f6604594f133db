package pagination

import "testing"

func TestNormalizeClampsPageAndSize(t *testing.T) {
	tests := []struct {
		name     string
		in       Params
		wantPage int
		wantSize int
	}{
		{name: "defaults", in: Params{}, wantPage: 0, wantSize: DefaultSize},
		{name: "negative page", in: Params{Page: -3, Size: 10}, wantPage: 0, wantSize: 10},
		{name: "oversized", in: Params{Page: 2, Size: 5000}, wantPage: 2, wantSize: MaxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Size != tt.wantSize {
				t.Fatalf("got page=%d size=%d, want page=%d size=%d", got.Page, got.Size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Size: 25}
	if got := p.Offset(); got != 75 {
		t.Fatalf("expected offset 75, got %d", got)
	}
}

func TestOrderClauseRestrictsColumns(t *testing.T) {
	p := Params{SortBy: "price", SortDesc: true}
	clause, err := p.OrderClause("created_at", "price", "name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "price DESC" {
		t.Fatalf("unexpected clause %q", clause)
	}

	if _, err := (Params{SortBy: "password_hash"}).OrderClause("created_at"); err == nil {
		t.Fatal("expected error for disallowed column")
	}

	clause, err = (Params{}).OrderClause("created_at", "price")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "created_at ASC" {
		t.Fatalf("expected fallback to first allowed column, got %q", clause)
	}
}

func TestParseSort(t *testing.T) {
	column, desc := ParseSort("price,desc")
	if column != "price" || !desc {
		t.Fatalf("unexpected parse result %q %v", column, desc)
	}
	column, desc = ParseSort("name")
	if column != "name" || desc {
		t.Fatalf("unexpected parse result %q %v", column, desc)
	}
	column, desc = ParseSort(" created_at , ASC ")
	if column != "created_at" || desc {
		t.Fatalf("unexpected parse result %q %v", column, desc)
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage[string](nil, 0, Params{})
	if page.Items == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if page.Size != DefaultSize {
		t.Fatalf("expected normalized size, got %d", page.Size)
	}
}
