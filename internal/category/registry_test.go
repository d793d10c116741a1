package category

import (
	"context"
	"slices"
	"sync"
	"testing"

	"budgetbook/internal/core"
)

type fakePersister struct {
	mu     sync.Mutex
	stored []string
	found  bool
	saves  [][]string
}

func (f *fakePersister) LoadCategories(context.Context) ([]string, bool) {
	return f.stored, f.found
}

func (f *fakePersister) SaveCategories(categories []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, categories)
}

func (f *fakePersister) lastSave() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

func TestRegistrySeededWithDefaults(t *testing.T) {
	r := NewRegistry(&fakePersister{}, nil)
	r.Load(context.Background())
	if !slices.Equal(r.List(), core.DefaultCategories()) {
		t.Fatalf("expected defaults, got %v", r.List())
	}
}

func TestRegistryLoadReplacesDefaults(t *testing.T) {
	p := &fakePersister{stored: []string{"Rent", " ", "Rent", "Food"}, found: true}
	r := NewRegistry(p, nil)
	r.Load(context.Background())

	if got := r.List(); !slices.Equal(got, []string{"Rent", "Food"}) {
		t.Fatalf("unexpected categories: %v", got)
	}
}

func TestRegistryAdd(t *testing.T) {
	p := &fakePersister{}
	r := NewRegistry(p, nil)

	if !r.Add("Travel") {
		t.Fatalf("expected Travel to be added")
	}
	if got := r.List(); got[len(got)-1] != "Travel" {
		t.Fatalf("expected Travel appended, got %v", got)
	}
	if !slices.Equal(p.lastSave(), r.List()) {
		t.Fatalf("expected save of full list, got %v", p.lastSave())
	}

	for _, name := range []string{"", "   ", "Food", "Travel"} {
		if r.Add(name) {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	if len(p.saves) != 1 {
		t.Fatalf("rejected adds must not save, got %d saves", len(p.saves))
	}
}

func TestRegistryRemove(t *testing.T) {
	p := &fakePersister{}
	r := NewRegistry(p, nil)
	before := r.List()

	if !r.Remove("Bills") {
		t.Fatalf("expected Bills to be removed")
	}
	if r.Contains("Bills") {
		t.Fatalf("Bills still registered")
	}
	if len(r.List()) != len(before)-1 {
		t.Fatalf("unexpected list: %v", r.List())
	}
	if r.Remove("Bills") {
		t.Fatalf("removing an absent category should report false")
	}
	if !slices.Contains(before, "Bills") {
		t.Fatalf("earlier List result was mutated: %v", before)
	}
}

func TestRegistryRename(t *testing.T) {
	cases := []struct {
		name     string
		old, new string
		ok       bool
	}{
		{"to fresh name", "Food", "Groceries", true},
		{"to existing name", "Food", "Bills", false},
		{"to empty name", "Food", "", false},
		{"to blank name", "Food", "  ", false},
		{"unknown source", "Nope", "Groceries", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakePersister{}
			r := NewRegistry(p, nil)
			before := r.List()

			if got := r.Rename(tc.old, tc.new); got != tc.ok {
				t.Fatalf("Rename(%q, %q) = %v, want %v", tc.old, tc.new, got, tc.ok)
			}
			if !tc.ok {
				if !slices.Equal(r.List(), before) {
					t.Fatalf("rejected rename changed registry: %v", r.List())
				}
				if len(p.saves) != 0 {
					t.Fatalf("rejected rename must not save")
				}
				return
			}
			after := r.List()
			if slices.Index(after, tc.new) != slices.Index(before, tc.old) {
				t.Fatalf("rename should keep position, got %v", after)
			}
		})
	}
}

func TestColorOfIsStableAndOrderIndependent(t *testing.T) {
	first := map[string]string{}
	for _, name := range core.DefaultCategories() {
		first[name] = ColorOf(name)
	}

	// Registry order and contents do not influence colors
	r := NewRegistry(&fakePersister{}, nil)
	r.Remove("Food")
	r.Add("Food")

	for name, want := range first {
		if got := ColorOf(name); got != want {
			t.Fatalf("color of %q changed: %s -> %s", name, want, got)
		}
		if !slices.Contains(Palette, want) {
			t.Fatalf("color %s not in palette", want)
		}
	}
	if ColorOf("") != FallbackColor {
		t.Fatalf("empty category should use the fallback color")
	}
}

func TestIconOf(t *testing.T) {
	if IconOf("Transport") != "car" {
		t.Fatalf("unexpected icon for Transport: %s", IconOf("Transport"))
	}
	if IconOf("Pets") != FallbackIcon {
		t.Fatalf("unknown category should use the fallback icon")
	}
}
