package xrecord

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestFormatArg(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "<nil>"},
		{"string passthrough", "hello", "hello"},
		{"error text", errors.New("disk full"), "disk full"},
		{"int", 42, "42"},
		{"map as json", map[string]int{"a": 1}, `{"a":1}`},
		{"struct as json", struct {
			User string `json:"user"`
		}{"alice"}, `{"user":"alice"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatArg(tt.in); got != tt.want {
				t.Errorf("FormatArg(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatArgUnmarshalableFallsBack(t *testing.T) {
	ch := make(chan int)
	got := FormatArg(ch)
	if got == "" {
		t.Fatal("FormatArg(chan) returned empty string")
	}
	if strings.Contains(got, "marshal error") {
		t.Errorf("FormatArg(chan) = %q, want plain fmt fallback", got)
	}
}

func TestFormatArgLazy(t *testing.T) {
	var calls atomic.Int32
	lz := Lazy(func() any {
		calls.Add(1)
		return "expensive"
	})

	if got := FormatArg(lz); got != "expensive" {
		t.Errorf("FormatArg(Lazy) = %q, want %q", got, "expensive")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("lazy evaluated %d times, want 1", n)
	}
}

func TestFormatArgLazyNil(t *testing.T) {
	var lz Lazy
	if got := FormatArg(lz); got != "<nil>" {
		t.Errorf("FormatArg(nil Lazy) = %q, want %q", got, "<nil>")
	}
}

func TestFormatArgs(t *testing.T) {
	got := FormatArgs([]any{"a", 1, nil}, nil)
	want := []string{"a", "1", "<nil>"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatArgsEmpty(t *testing.T) {
	if got := FormatArgs(nil, nil); got != nil {
		t.Errorf("FormatArgs(nil) = %v, want nil", got)
	}
	if got := FormatArgs([]any{}, nil); got != nil {
		t.Errorf("FormatArgs(empty) = %v, want nil", got)
	}
}

func TestFormatArgsCustomFormatter(t *testing.T) {
	upper := func(v any) string { return strings.ToUpper(FormatArg(v)) }

	got := FormatArgs([]any{"a", "b"}, upper)
	if got[0] != "A" || got[1] != "B" {
		t.Errorf("got = %v, want [A B]", got)
	}
}

func TestFormatArgsLazyBeforeCustomFormatter(t *testing.T) {
	lz := Lazy(func() any { return "inner" })
	seen := ""
	f := func(v any) string {
		if s, ok := v.(string); ok {
			seen = s
		}
		return FormatArg(v)
	}

	got := FormatArgs([]any{lz}, f)
	if seen != "inner" {
		t.Errorf("custom formatter saw %q, want pre-evaluated %q", seen, "inner")
	}
	if got[0] != "inner" {
		t.Errorf("got[0] = %q, want %q", got[0], "inner")
	}
}
