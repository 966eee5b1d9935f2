package geokey

import "testing"

func TestPathSignEncoding(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     string
	}{
		{0, 0, "N00/N00E000.hgt.gz"},
		{-0.0, -0.0, "N00/N00E000.hgt.gz"},
		{-45.123, -9.456, "S46/S46W010.hgt.gz"},
		{90, 180, "N90/N90E180.hgt.gz"},
		{45.123, 9.456, "N45/N45E009.hgt.gz"},
	}
	for _, c := range cases {
		got := Locate(c.lat, c.lng).Path()
		if got != c.want {
			t.Errorf("Locate(%v, %v).Path() = %q, want %q", c.lat, c.lng, got, c.want)
		}
	}
}

func TestPathDeterministicOnFraction(t *testing.T) {
	base := Locate(45.0, 9.0).Path()
	for _, frac := range []float64{0.001, 0.5, 0.999} {
		got := Locate(45+frac, 9+frac).Path()
		if got != base {
			t.Errorf("Locate(%v, %v).Path() = %q, want %q (fraction must not affect path)", 45+frac, 9+frac, got, base)
		}
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{100, 200, false},
	}
	for _, c := range cases {
		if got := Valid(c.lat, c.lng); got != c.want {
			t.Errorf("Valid(%v, %v) = %v, want %v", c.lat, c.lng, got, c.want)
		}
	}
}
