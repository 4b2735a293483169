package builtins

import (
	"context"
	"testing"
)

func TestReference_CoversFuncs(t *testing.T) {
	funcs := Funcs()
	for k := range Bound(context.Background(), ".", nil) {
		funcs[k] = struct{}{}
	}

	documented := make(map[string]bool)
	for _, fn := range Reference {
		if documented[fn.Name] {
			t.Errorf("duplicate reference entry %q", fn.Name)
		}
		documented[fn.Name] = true

		// include is supplied by the renderer
		if _, ok := funcs[fn.Name]; !ok && fn.Name != "include" {
			t.Errorf("reference entry %q has no implementation", fn.Name)
		}
	}

	for name := range funcs {
		if !documented[name] {
			t.Errorf("function %q is not documented", name)
		}
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		category   string
		limit      int
		minResults int
		maxResults int
	}{
		{name: "by name", query: "blake3", minResults: 2, maxResults: 2},
		{name: "by description", query: "environment", minResults: 1},
		{name: "by tag", query: "json", minResults: 3},
		{name: "empty query returns all", query: "", minResults: len(Reference), maxResults: len(Reference)},
		{name: "with limit", query: "", limit: 5, minResults: 5, maxResults: 5},
		{name: "category filter", query: "", category: "crypto", minResults: 5, maxResults: 5},
		{name: "no match", query: "nonexistent_function_xyz", maxResults: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Search(tt.query, tt.category, tt.limit)
			if len(results) < tt.minResults {
				t.Errorf("expected at least %d results, got %d", tt.minResults, len(results))
			}
			if tt.maxResults > 0 || tt.query == "nonexistent_function_xyz" {
				if len(results) > tt.maxResults {
					t.Errorf("expected at most %d results, got %d", tt.maxResults, len(results))
				}
			}
			for _, fn := range results {
				if tt.category != "" && fn.Category != tt.category {
					t.Errorf("result %q has category %q, want %q", fn.Name, fn.Category, tt.category)
				}
			}
		})
	}
}

func TestLookup(t *testing.T) {
	fn, ok := Lookup("cmd")
	if !ok {
		t.Fatal("expected cmd to be documented")
	}
	if fn.Category != "system" {
		t.Errorf("expected category system, got %s", fn.Category)
	}

	if _, ok := Lookup("nope"); ok {
		t.Error("expected lookup of unknown function to fail")
	}
}

func TestCategories(t *testing.T) {
	cats := Categories()

	total := 0
	for _, n := range cats {
		total += n
	}
	if total != len(Reference) {
		t.Errorf("category counts sum to %d, want %d", total, len(Reference))
	}

	names := CategoryNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("category names not sorted: %v", names)
		}
	}
}
