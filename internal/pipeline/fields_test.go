package pipeline

import "testing"

func TestLookupAnyDotPath(t *testing.T) {
	m := map[string]any{
		"a":    map[string]any{"b": 5.0},
		"flat": "x",
	}
	if v, ok := lookupAny(m, "a.b"); !ok || v != 5.0 {
		t.Fatalf("lookupAny(a.b) = %v, %v", v, ok)
	}
	if v, ok := lookupAny(m, "flat"); !ok || v != "x" {
		t.Fatalf("lookupAny(flat) = %v, %v", v, ok)
	}
	if _, ok := lookupAny(m, "a.missing"); ok {
		t.Fatal("lookupAny found a.missing")
	}
	if _, ok := lookupAny(m, "flat.deeper"); ok {
		t.Fatal("lookupAny walked through a non-map")
	}
}

func TestFirstRawAliasChain(t *testing.T) {
	m := map[string]any{"unformattedPrice": 500000.0, "price": 1.0}
	if v, ok := firstRaw(m, "price"); !ok || v != 500000.0 {
		t.Fatalf("firstRaw = %v, %v, want first alias", v, ok)
	}

	// Falsy first alias falls through.
	m = map[string]any{"unformattedPrice": 0.0, "price": 750000.0}
	if v, ok := firstRaw(m, "price"); !ok || v != 750000.0 {
		t.Fatalf("firstRaw = %v, %v, want fallback alias", v, ok)
	}

	if _, ok := firstRaw(map[string]any{}, "price"); ok {
		t.Fatal("firstRaw found a value in an empty map")
	}

	// Unregistered fields resolve by their own name.
	m = map[string]any{"beds": 3.0}
	if v, ok := firstRaw(m, "beds"); !ok || v != 3.0 {
		t.Fatalf("firstRaw(beds) = %v, %v", v, ok)
	}
}

func TestFirstStringStopsOnNonString(t *testing.T) {
	// A truthy non-string halts resolution rather than trying later aliases.
	m := map[string]any{"address_full": 12.0, "address": "1 Real St"}
	if got := firstString(m, "address"); got != "" {
		t.Fatalf("firstString = %q, want empty", got)
	}
	m = map[string]any{"address": "1 Real St"}
	if got := firstString(m, "address"); got != "1 Real St" {
		t.Fatalf("firstString = %q", got)
	}
}

func TestAsFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 12.5, 12.5, true},
		{"int", 3, 3, true},
		{"int64", int64(9), 9, true},
		{"numeric string", "12.5", 12.5, true},
		{"padded string", " 7 ", 7, true},
		{"word string", "abc", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := asFloat(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("asFloat(%v) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestAsInt(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"int", 42, 42, true},
		{"float truncates", 3.9, 3, true},
		{"integer string", "42", 42, true},
		{"decimal string", "3.5", 0, false},
		{"word string", "soon", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := asInt(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("asInt(%v) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestStrOf(t *testing.T) {
	if got := strOf(98101.0); got != "98101" {
		t.Fatalf("strOf(98101.0) = %q", got)
	}
	if got := strOf(12.5); got != "12.5" {
		t.Fatalf("strOf(12.5) = %q", got)
	}
	if got := strOf("x"); got != "x" {
		t.Fatalf("strOf(x) = %q", got)
	}
}

func TestJoinNonEmpty(t *testing.T) {
	if got := joinNonEmpty(", ", "a", "", "b", ""); got != "a, b" {
		t.Fatalf("joinNonEmpty = %q", got)
	}
	if got := joinNonEmpty(", ", "", ""); got != "" {
		t.Fatalf("joinNonEmpty = %q, want empty", got)
	}
}
