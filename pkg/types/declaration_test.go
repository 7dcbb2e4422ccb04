package types

import (
	"errors"
	"testing"
)

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"plain value", 1, 1},
		{"default", Default(2), 2},
		{"nested default", Default(Default(3)), 3},
		{"extend around default", Extend(Default("x")), "x"},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unwrap(tt.value); got != tt.want {
				t.Errorf("Unwrap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrapKeepsPlumbing(t *testing.T) {
	d := PlumbMethod(func(*Plugin, Method, any, ...any) (any, error) { return nil, nil })
	if got := Unwrap(d); got != d {
		t.Errorf("Unwrap(plumb) = %v, want the declaration itself", got)
	}
}

func TestDefaultOfDefaultMatchesDefault(t *testing.T) {
	a := Default(Default(42))
	b := Default(42)
	if a.Kind() != b.Kind() || a.Value() != b.Value() {
		t.Errorf("Default(Default(42)) = (%v, %v), want (%v, %v)", a.Kind(), a.Value(), b.Kind(), b.Value())
	}
}

func TestPlumb(t *testing.T) {
	layer := func(owner *Plugin, next Method, self any, args ...any) (any, error) {
		return next(self, args...)
	}
	getter := func(owner *Plugin, next Getter, self any) (any, error) { return next(self) }

	tests := []struct {
		name     string
		value    any
		wantKind Kind
		wantErr  error
	}{
		{"function literal", layer, KindPlumbMethod, nil},
		{"PlumbFunc", PlumbFunc(layer), KindPlumbMethod, nil},
		{"accessors", PlumbAccessors{Get: getter}, KindPlumbProperty, nil},
		{"accessors pointer", &PlumbAccessors{Get: getter}, KindPlumbProperty, nil},
		{"wrapped in default", Default(layer), KindPlumbMethod, nil},
		{"existing plumb declaration", PlumbMethod(layer), KindPlumbMethod, nil},
		{"integer", 7, 0, ErrTypeConstraint},
		{"string", "greet", 0, ErrTypeConstraint},
		{"endpoint method", Method(func(any, ...any) (any, error) { return nil, nil }), 0, ErrTypeConstraint},
		{"nil accessors pointer", (*PlumbAccessors)(nil), 0, ErrTypeConstraint},
		{"nil", nil, 0, ErrTypeConstraint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Plumb(tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Plumb() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if d.Kind() != tt.wantKind {
				t.Errorf("Plumb().Kind() = %v, want %v", d.Kind(), tt.wantKind)
			}
		})
	}
}

func TestDeclarationPredicates(t *testing.T) {
	tests := []struct {
		decl     *Declaration
		closes   bool
		plumbing bool
	}{
		{Default(1), true, false},
		{Extend(1), true, false},
		{PlumbMethod(nil), false, true},
		{PlumbProperty(nil, nil, nil), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.decl.String(), func(t *testing.T) {
			if got := tt.decl.Closes(); got != tt.closes {
				t.Errorf("Closes() = %v, want %v", got, tt.closes)
			}
			if got := tt.decl.IsPlumbing(); got != tt.plumbing {
				t.Errorf("IsPlumbing() = %v, want %v", got, tt.plumbing)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if got := Kind(99).String(); got != "Kind(99)" {
		t.Errorf("Kind(99).String() = %q", got)
	}
	if got := KindPlumbProperty.String(); got != "plumb-property" {
		t.Errorf("KindPlumbProperty.String() = %q", got)
	}
}
