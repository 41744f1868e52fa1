package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	cases := []struct {
		name string
		in   string
		def  int
		want int
	}{
		{"empty falls back", "", 30, 30},
		{"numeric", "7", 30, 7},
		{"negative", "-5", 30, -5},
		{"garbage falls back", "seven", 30, 30},
		{"float falls back", "7.5", 30, 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseIntDefault(tc.in, tc.def); got != tc.want {
				t.Fatalf("ParseIntDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
			}
		})
	}
}
