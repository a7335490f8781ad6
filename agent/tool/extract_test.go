package tool

import (
	"reflect"
	"testing"
)

func TestExtractOrderID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int64
	}{
		{"where is order 101", 101},
		{"Order ID 202 please", 202},
		{"order #303", 303},
		{"#404", 404},
		{"id 55", 55},
		{"  101  ", 101},
		{"my tv is broken", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := ExtractOrderID(tc.in); got != tc.want {
			t.Fatalf("ExtractOrderID(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHasBareID(t *testing.T) {
	t.Parallel()

	if !HasBareID(" 101 ") {
		t.Fatalf("expected bare id match")
	}
	if HasBareID("order 101") {
		t.Fatalf("expected no bare id match for prose")
	}
}

func TestExtractReturnRequestID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int64
	}{
		{"tell me about return request 1", 1},
		{"request 2", 2},
		{"rr 3", 3},
		{"return #4", 4},
		{"refund my order", 0},
	}
	for _, tc := range cases {
		if got := ExtractReturnRequestID(tc.in); got != tc.want {
			t.Fatalf("ExtractReturnRequestID(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestExtractPhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"0771234567", "0771234567"},
		{"077-123 4567", "0771234567"},
		{"+94771234567", "+94771234567"},
		{"call me", ""},
		{"12345", ""},
	}
	for _, tc := range cases {
		if got := ExtractPhone(tc.in); got != tc.want {
			t.Fatalf("ExtractPhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLooksLikeName(t *testing.T) {
	t.Parallel()

	if !LooksLikeName("Nimal Perera") {
		t.Fatalf("expected plain name to pass")
	}
	for _, bad := range []string{"buy now", "0771234567", "order 101", "#", "x"} {
		if LooksLikeName(bad) {
			t.Fatalf("expected %q rejected as name", bad)
		}
	}
}

func TestIsBuyNow(t *testing.T) {
	t.Parallel()

	for _, yes := range []string{"buy now", "  Buy   NOW  "} {
		if !IsBuyNow(yes) {
			t.Fatalf("expected %q to trigger", yes)
		}
	}
	for _, no := range []string{"buy now please", "buy", "i want to buy now"} {
		if IsBuyNow(no) {
			t.Fatalf("expected %q not to trigger", no)
		}
	}
}

func TestSearchTokens(t *testing.T) {
	t.Parallel()

	got := SearchTokens("I want to buy an iPhone 15 please")
	want := []string{"phone", "15"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchTokens = %v, want %v", got, want)
	}
}

func TestExtractBrand(t *testing.T) {
	t.Parallel()

	if got := ExtractBrand("any Samsung phones?"); got != "samsung" {
		t.Fatalf("expected samsung, got %q", got)
	}
	if got := ExtractBrand("iphone 15 price"); got != "apple" {
		t.Fatalf("expected iphone to normalize to apple, got %q", got)
	}
	if got := ExtractBrand("a cheap fridge"); got != "" {
		t.Fatalf("expected no brand, got %q", got)
	}
}
