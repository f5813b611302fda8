package entity

import "testing"

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		page       int
		limit      int
		totalPages int64
		hasNext    bool
		hasPrev    bool
	}{
		{name: "empty", total: 0, page: 1, limit: 20, totalPages: 0, hasNext: false, hasPrev: false},
		{name: "first of three", total: 45, page: 1, limit: 20, totalPages: 3, hasNext: true, hasPrev: false},
		{name: "last page", total: 45, page: 3, limit: 20, totalPages: 3, hasNext: false, hasPrev: true},
		{name: "defaults", total: 5, page: 0, limit: 0, totalPages: 1, hasNext: false, hasPrev: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewMeta(tt.total, tt.page, tt.limit)
			if meta.TotalPages != tt.totalPages {
				t.Errorf("expected %d pages, got %d", tt.totalPages, meta.TotalPages)
			}
			if meta.HasNext != tt.hasNext {
				t.Errorf("expected has_next %v, got %v", tt.hasNext, meta.HasNext)
			}
			if meta.HasPrev != tt.hasPrev {
				t.Errorf("expected has_prev %v, got %v", tt.hasPrev, meta.HasPrev)
			}
		})
	}
}

func TestTemplateParametersScan(t *testing.T) {
	var params TemplateParameters
	if err := params.Scan(`{"prompt_prefix":"anime style","quality":"high","style_strength":0.5}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.PromptPrefix != "anime style" || params.Quality != "high" {
		t.Fatalf("unexpected params %+v", params)
	}
	if params.StyleStrength == nil || *params.StyleStrength != 0.5 {
		t.Fatalf("expected style strength 0.5, got %v", params.StyleStrength)
	}

	if err := params.Scan(42); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
