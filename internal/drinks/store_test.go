package drinks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"coffeeshop/internal/observability/logging"

	"github.com/google/go-cmp/cmp"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }

func TestStore_ResetSeedsWater(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, Drink{Title: "matcha", Recipe: Recipe{{Name: "matcha", Color: "green", Parts: 1}}}); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset error: %v", err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []Drink{{ID: 1, Title: "water", Recipe: Recipe{{Name: "water", Color: "blue", Parts: 1}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_CRUD(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	latte := Drink{Title: "latte", Recipe: Recipe{
		{Name: "espresso", Color: "brown", Parts: 1},
		{Name: "milk", Color: "white", Parts: 3},
	}}
	created, err := s.Insert(ctx, latte)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected an assigned id")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}

	// Title only; the recipe stays.
	updated, err := s.Update(ctx, created.ID, Update{Title: strPtr("flat white")})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Title != "flat white" || len(updated.Recipe) != 2 {
		t.Errorf("unexpected update result %+v", updated)
	}

	recipe := Recipe{{Name: "espresso", Color: "brown", Parts: 2}}
	updated, err = s.Update(ctx, created.ID, Update{Recipe: &recipe})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Title != "flat white" || !cmp.Equal(updated.Recipe, recipe) {
		t.Errorf("unexpected update result %+v", updated)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestStore_Errors(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	water := Recipe{{Name: "water", Color: "blue", Parts: 1}}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"duplicate title", func() error {
			_, err := s.Insert(ctx, Drink{Title: "water", Recipe: water})
			return err
		}, ErrDuplicateTitle},
		{"empty title", func() error {
			_, err := s.Insert(ctx, Drink{Title: " ", Recipe: water})
			return err
		}, ErrInvalid},
		{"empty recipe", func() error {
			_, err := s.Insert(ctx, Drink{Title: "air"})
			return err
		}, ErrInvalid},
		{"update unknown", func() error {
			_, err := s.Update(ctx, 999, Update{Title: strPtr("x")})
			return err
		}, ErrNotFound},
		{"delete unknown", func() error {
			return s.Delete(ctx, 999)
		}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := s.Insert(ctx, Drink{Title: "tea", Recipe: water}); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, err := s.Update(ctx, 1, Update{Title: strPtr("tea")}); !errors.Is(err, ErrDuplicateTitle) {
		t.Errorf("renaming onto an existing title = %v, want ErrDuplicateTitle", err)
	}
}

func TestStore_UpdateSkipsEmptyFields(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	got, err := s.Update(ctx, 1, Update{Title: strPtr(""), Recipe: &Recipe{}})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	want := Drink{ID: 1, Title: "water", Recipe: Recipe{{Name: "water", Color: "blue", Parts: 1}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Update mismatch (-want +got):\n%s", diff)
	}

	stored, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Errorf("stored drink changed (-want +got):\n%s", diff)
	}
}

func TestStore_Ping(t *testing.T) {
	s, err := Open(context.Background(), ":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Errorf("expected Ping to fail on a closed store")
	}
}

func TestRecipe_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Recipe
		wantErr bool
	}{
		{"list", `[{"name":"milk","color":"white","parts":2}]`, Recipe{{Name: "milk", Color: "white", Parts: 2}}, false},
		{"single object", ` {"name":"milk","color":"white","parts":2}`, Recipe{{Name: "milk", Color: "white", Parts: 2}}, false},
		{"string", `"milk"`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Recipe
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDrink_Projections(t *testing.T) {
	d := Drink{ID: 7, Title: "mocha", Recipe: Recipe{
		{Name: "chocolate", Color: "brown", Parts: 1},
		{Name: "milk", Color: "white", Parts: 2},
	}}

	short := d.Short()
	wantShort := ShortDrink{ID: 7, Title: "mocha", Recipe: []ShortIngredient{
		{Name: "chocolate", Color: "brown"},
		{Name: "milk", Color: "white"},
	}}
	if diff := cmp.Diff(wantShort, short); diff != "" {
		t.Errorf("Short mismatch (-want +got):\n%s", diff)
	}

	long := d.Long()
	if diff := cmp.Diff([]Ingredient(d.Recipe), long.Recipe); diff != "" {
		t.Errorf("Long mismatch (-want +got):\n%s", diff)
	}

	raw, err := json.Marshal(short)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(raw) != `{"id":7,"title":"mocha","recipe":[{"name":"chocolate","color":"brown"},{"name":"milk","color":"white"}]}` {
		t.Errorf("unexpected short encoding %s", raw)
	}
}
