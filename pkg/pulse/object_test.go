package pulse

import (
	"errors"
	"reflect"
	"testing"
)

func TestObjectDefineAndRead(t *testing.T) {
	rt := NewRuntime()

	o := NewObject(rt).Named("user")
	if err := o.Define(map[string]any{"name": "ada", "age": 36}); err != nil {
		t.Fatalf("define failed: %v", err)
	}

	v, err := o.Read("name")
	if err != nil || v != "ada" {
		t.Errorf("expected name ada, got %v (%v)", v, err)
	}

	if _, err := o.Read("missing"); !errors.Is(err, ErrFieldUnknown) {
		t.Errorf("expected ErrFieldUnknown, got %v", err)
	}
}

func TestObjectFieldsParticipateInTracking(t *testing.T) {
	rt := NewRuntime()

	o := NewObject(rt)
	if err := o.Define(map[string]any{"count": 0}); err != nil {
		t.Fatalf("define failed: %v", err)
	}
	count := o.MustField("count")

	var seen []any
	r := Autorun(rt, func() {
		seen = append(seen, count.Read())
	})
	defer r.Dispose()

	count.Write(1)
	count.Write(1) // equal write, suppressed

	if len(seen) != 2 || seen[1] != 1 {
		t.Errorf("expected [0 1], got %v", seen)
	}
	if count.Version() != 1 {
		t.Errorf("expected version 1 after one effective write, got %d", count.Version())
	}
}

func TestObjectDefineValidatesBeforeCommitting(t *testing.T) {
	rt := NewRuntime()
	o := NewObject(rt)

	err := o.Define(map[string]any{"ok": 1, "$internal": 2})
	if !errors.Is(err, ErrReservedKey) {
		t.Fatalf("expected ErrReservedKey, got %v", err)
	}
	if err := o.Define(map[string]any{"": 1}); !errors.Is(err, ErrReservedKey) {
		t.Fatalf("expected ErrReservedKey for empty name, got %v", err)
	}

	// A failed define must not commit any field, including the valid ones.
	if len(o.Keys()) != 0 {
		t.Errorf("expected no fields after failed define, got %v", o.Keys())
	}

	if err := o.Define(map[string]any{"ok": 1}); err != nil {
		t.Fatalf("define failed: %v", err)
	}
	if err := o.Define(map[string]any{"ok": 2}); !errors.Is(err, ErrFieldExists) {
		t.Errorf("expected ErrFieldExists on redefinition, got %v", err)
	}
}

func TestObjectDefineIsAtomicForDependents(t *testing.T) {
	rt := NewRuntime()

	o := NewObject(rt)
	if err := o.Define(map[string]any{"a": 1}); err != nil {
		t.Fatal(err)
	}
	a := o.MustField("a")

	runs := 0
	r := Autorun(rt, func() {
		_ = a.Read()
		runs++
	})
	defer r.Dispose()

	// Writing existing fields while defining new ones flushes once.
	rt.Batch(func() {
		a.Write(2)
		if err := o.Define(map[string]any{"b": true}); err != nil {
			t.Errorf("define inside batch failed: %v", err)
		}
	})

	if runs != 2 {
		t.Errorf("expected one re-run for the whole batch, got %d runs total", runs)
	}
}

func TestObjectAssign(t *testing.T) {
	rt := NewRuntime()

	o := NewObject(rt)
	if err := o.Define(map[string]any{"x": 0, "y": 0}); err != nil {
		t.Fatal(err)
	}

	runs := 0
	r := Autorun(rt, func() {
		_, _ = o.Read("x")
		_, _ = o.Read("y")
		runs++
	})
	defer r.Dispose()

	if err := o.Assign(map[string]any{"x": 1, "y": 2}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if runs != 2 {
		t.Errorf("expected assign to flush once, got %d runs total", runs)
	}

	// An unknown key rejects the whole assignment.
	err := o.Assign(map[string]any{"x": 9, "z": 9})
	if !errors.Is(err, ErrFieldUnknown) {
		t.Fatalf("expected ErrFieldUnknown, got %v", err)
	}
	if v, _ := o.Read("x"); v != 1 {
		t.Errorf("expected failed assign to write nothing, x = %v", v)
	}
}

func TestObjectKeysInDefinitionOrder(t *testing.T) {
	rt := NewRuntime()

	o := NewObject(rt)
	if err := o.Define(map[string]any{"b": 1, "a": 2}); err != nil {
		t.Fatal(err)
	}
	if err := o.Define(map[string]any{"c": 3}); err != nil {
		t.Fatal(err)
	}

	// Keys within one Define commit in sorted order; later defines append.
	want := []string{"a", "b", "c"}
	if got := o.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}
}

func TestObjectMustFieldPanics(t *testing.T) {
	rt := NewRuntime()
	o := NewObject(rt)

	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic for unknown field")
		}
		err, ok := rec.(error)
		if !ok || !errors.Is(err, ErrFieldUnknown) {
			t.Errorf("expected ErrFieldUnknown, got %v", rec)
		}
	}()
	o.MustField("nope")
}
