package interchange_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/caffeineduck/jsru/interchange"
)

func TestFromHostScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "hello", "hello"},
		{"float64", 1.5, 1.5},
		{"float32", float32(2), 2.0},
		{"int", 42, 42.0},
		{"int8", int8(-3), -3.0},
		{"int64", int64(1 << 40), float64(1 << 40)},
		{"uint", uint(7), 7.0},
		{"uint32", uint32(9), 9.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := interchange.FromHost(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromHost(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromHostStructured(t *testing.T) {
	got, err := interchange.FromHost(map[string]any{
		"nums": []int{1, 2, 3},
		"nested": map[string]string{
			"k": "v",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{
		"nums":   []any{1.0, 2.0, 3.0},
		"nested": map[string]any{"k": "v"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestFromHostPointer(t *testing.T) {
	n := 5
	got, err := interchange.FromHost(&n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5.0 {
		t.Errorf("got %#v, want 5.0", got)
	}

	var nilPtr *int
	got, err = interchange.FromHost(nilPtr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %#v, want nil", got)
	}
}

func TestFromHostUnsupported(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"func", func() {}},
		{"chan", make(chan int)},
		{"complex", complex(1, 2)},
		{"struct", struct{ X int }{1}},
		{"int-keyed map", map[int]string{1: "a"}},
		{"nested unsupported", []any{1, func() {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interchange.FromHost(tt.in)
			if !errors.Is(err, interchange.ErrUnsupportedType) {
				t.Errorf("expected ErrUnsupportedType, got %v", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	values := []any{
		nil,
		true,
		3.14,
		"text",
		[]any{1.0, "two", nil},
		map[string]any{"a": 1.0, "b": []any{true}},
	}

	for _, v := range values {
		iv, err := interchange.FromHost(v)
		if err != nil {
			t.Fatalf("FromHost(%#v): %v", v, err)
		}
		if got := interchange.ToHost(iv); !reflect.DeepEqual(got, v) {
			t.Errorf("round trip of %#v = %#v", v, got)
		}
	}
}
