package id

import "testing"

func TestUUIDGenerator_NewID(t *testing.T) {
	gen := NewUUIDGenerator()

	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	if !Valid(first) {
		t.Fatalf("expected %q to be a valid uuid", first)
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"3f1c1d5e-4b8a-4f7e-9a55-0a8f7f7d2c11": true,
		"":                                     false,
		"not-a-uuid":                           false,
		"{3f1c1d5e-4b8a-4f7e-9a55-0a8f7f7d2c11}": false,
	}
	for raw, want := range cases {
		if got := Valid(raw); got != want {
			t.Fatalf("Valid(%q)=%v want %v", raw, got, want)
		}
	}
}
