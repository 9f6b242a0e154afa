package validate_test

import (
	"testing"

	"warungpos/internal/validate"
)

func TestPrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1500", 1500, true},
		{" 12.5 ", 12.5, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := validate.Price(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("Price(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestStock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"10", 10, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"3.5", 0, false},
		{"x", 0, false},
	}
	for _, c := range cases {
		got, ok := validate.Stock(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("Stock(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestEmailAndPassword(t *testing.T) {
	if _, ok := validate.Email("ibu@warung.test"); !ok {
		t.Fatal("valid email rejected")
	}
	if _, ok := validate.Email("not-an-email"); ok {
		t.Fatal("invalid email accepted")
	}
	if !validate.Password("Passw0rd!") {
		t.Fatal("valid password rejected")
	}
	for _, bad := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		if validate.Password(bad) {
			t.Fatalf("weak password accepted: %q", bad)
		}
	}
}

func TestName(t *testing.T) {
	if _, ok := validate.Name("  Kopi Sachet "); !ok {
		t.Fatal("valid name rejected")
	}
	if _, ok := validate.Name("   "); ok {
		t.Fatal("blank name accepted")
	}
}
