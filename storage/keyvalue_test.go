package storage_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tailored-agentic-units/provisionality/observability"
	"github.com/tailored-agentic-units/provisionality/property"
	"github.com/tailored-agentic-units/provisionality/storage"
)

func TestKeyValue_SetGet(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{name: "string", value: "Alice", want: "Alice"},
		{name: "number becomes float", value: 42, want: float64(42)},
		{name: "bool", value: true, want: true},
		{name: "object", value: map[string]any{"a": 1}, want: map[string]any{"a": float64(1)}},
		{name: "list", value: []string{"x", "y"}, want: []any{"x", "y"}},
		{name: "null", value: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.New()

			if err := kv.Set(ctx, "k", tt.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := kv.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestKeyValue_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	kv := storage.New()

	if err := kv.Set(ctx, "obj", map[string]any{"a": "b"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	first, _ := kv.Get(ctx, "obj")
	first.(map[string]any)["a"] = "mutated"

	second, _ := kv.Get(ctx, "obj")
	if second.(map[string]any)["a"] != "b" {
		t.Errorf("stored value was mutated through Get: %v", second)
	}
}

func TestKeyValue_HasAndDelete(t *testing.T) {
	ctx := context.Background()
	rec := &observability.Recorder{}
	kv := storage.New(storage.WithObserver(rec))

	if has, _ := kv.Has(ctx, "k"); has {
		t.Fatal("Has() = true before Set")
	}
	if err := kv.Set(ctx, "k", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if has, _ := kv.Has(ctx, "k"); !has {
		t.Fatal("Has() = false after Set")
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if has, _ := kv.Has(ctx, "k"); has {
		t.Error("Has() = true after Delete")
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}

	if got := len(rec.Filter(storage.EventSet)); got != 1 {
		t.Errorf("set events = %d, want 1", got)
	}
	if got := len(rec.Filter(storage.EventDelete)); got != 1 {
		t.Errorf("delete events = %d, want 1", got)
	}
}

func TestKeyValue_SetUnrepresentable(t *testing.T) {
	kv := storage.New()
	if err := kv.Set(context.Background(), "fn", func() {}); err == nil {
		t.Error("Set() error = nil, want encoding error")
	}
}

func TestKeyValue_ObserversRunSynchronously(t *testing.T) {
	ctx := context.Background()
	kv := storage.New()

	var order []string
	var seen []any
	first := property.NewObserver(func(_ context.Context, v any) error {
		order = append(order, "first")
		seen = append(seen, v)
		v.(map[string]any)["x"] = "mutated"
		return nil
	})
	second := property.NewObserver(func(_ context.Context, v any) error {
		order = append(order, "second")
		seen = append(seen, v)
		return nil
	})

	for _, obs := range []*property.Observer{first, second, first} {
		if err := kv.AddObserver("k", obs); err != nil {
			t.Fatalf("AddObserver() error = %v", err)
		}
	}

	if err := kv.Set(ctx, "k", map[string]any{"x": "y"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Errorf("order = %v, want [first second]", order)
	}
	if seen[1].(map[string]any)["x"] != "y" {
		t.Errorf("second observer saw %v, want an unmutated copy", seen[1])
	}

	if err := kv.Set(ctx, "other", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if len(order) != 2 {
		t.Errorf("observer for k ran on Set(other)")
	}
}

func TestKeyValue_ObserverErrorsJoined(t *testing.T) {
	ctx := context.Background()
	kv := storage.New()

	errA := errors.New("a")
	errB := errors.New("b")
	ran := 0
	for _, e := range []error{errA, nil, errB} {
		e := e
		obs := property.NewObserver(func(context.Context, any) error {
			ran++
			return e
		})
		if err := kv.AddObserver("k", obs); err != nil {
			t.Fatalf("AddObserver() error = %v", err)
		}
	}

	err := kv.Set(ctx, "k", "v")
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Set() error = %v, want both observer errors", err)
	}
	if ran != 3 {
		t.Errorf("observers ran %d times, want 3", ran)
	}
	if got, _ := kv.Get(ctx, "k"); got != "v" {
		t.Errorf("Get() = %v, want v (write kept)", got)
	}
}

func TestKeyValue_RemoveObserver(t *testing.T) {
	ctx := context.Background()
	kv := storage.New()

	calls := 0
	obs := property.NewObserver(func(context.Context, any) error {
		calls++
		return nil
	})

	if err := kv.AddObserver("k", obs); err != nil {
		t.Fatalf("AddObserver() error = %v", err)
	}
	if err := kv.RemoveObserver("k", obs); err != nil {
		t.Fatalf("RemoveObserver() error = %v", err)
	}
	if err := kv.RemoveObserver("unknown", obs); err != nil {
		t.Fatalf("RemoveObserver(unknown) error = %v", err)
	}

	if err := kv.Set(ctx, "k", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestKeyValue_NilObserver(t *testing.T) {
	kv := storage.New()

	tests := []struct {
		name string
		obs  *property.Observer
	}{
		{name: "nil handle", obs: nil},
		{name: "nil func", obs: property.NewObserver(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := kv.AddObserver("k", tt.obs); !errors.Is(err, property.ErrNilObserver) {
				t.Errorf("AddObserver() error = %v, want ErrNilObserver", err)
			}
			if err := kv.RemoveObserver("k", tt.obs); !errors.Is(err, property.ErrNilObserver) {
				t.Errorf("RemoveObserver() error = %v, want ErrNilObserver", err)
			}
		})
	}
}
