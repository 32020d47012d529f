package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	cases := map[string]int{"": 7, "42": 42, "x": 7, "-3": -3}
	for in, want := range cases {
		if got := ParseIntDefault(in, 7); got != want {
			t.Errorf("ParseIntDefault(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseFloatDefault(t *testing.T) {
	cases := map[string]float64{"": 0.5, "0.25": 0.25, "abc": 0.5, "2": 2}
	for in, want := range cases {
		if got := ParseFloatDefault(in, 0.5); got != want {
			t.Errorf("ParseFloatDefault(%q) = %v, want %v", in, got, want)
		}
	}
}
