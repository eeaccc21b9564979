package climate

import (
	"math"
	"testing"
)

func TestClassifyBounds(t *testing.T) {
	cases := []struct {
		temp, humi float64
		want       Comfort
	}{
		{21.0, 40.0, Good},
		{25.0, 60.0, Good},
		{23.0, 45.0, Good},
		{21.0, 60.0, Good},
		{25.0, 40.0, Good},
		{20.999, 50.0, Bad},
		{25.001, 50.0, Bad},
		{23.0, 39.999, Bad},
		{23.0, 60.001, Bad},
		{-5, 50, Bad},
		{23, 95, Bad},
	}
	for _, c := range cases {
		if got := Classify(c.temp, c.humi); got != c.want {
			t.Fatalf("Classify(%v, %v) = %s, want %s", c.temp, c.humi, got, c.want)
		}
	}
}

func TestClassifyGrid(t *testing.T) {
	for temp := 21.0; temp <= 25.0; temp += 0.25 {
		for humi := 40.0; humi <= 60.0; humi += 0.5 {
			if got := Classify(temp, humi); got != Good {
				t.Fatalf("Classify(%v, %v) = %s inside range", temp, humi, got)
			}
		}
	}
}

func TestClassifyNaN(t *testing.T) {
	nan := math.NaN()
	if got := Classify(nan, 50); got != Bad {
		t.Fatalf("NaN temperature classified %s", got)
	}
	if got := Classify(23, nan); got != Bad {
		t.Fatalf("NaN humidity classified %s", got)
	}
	if got := Classify(nan, nan); got != Bad {
		t.Fatalf("NaN reading classified %s", got)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	first := Classify(22.5, 55)
	for i := 0; i < 100; i++ {
		if got := Classify(22.5, 55); got != first {
			t.Fatalf("call %d returned %s, first returned %s", i, got, first)
		}
	}
}

func TestLabels(t *testing.T) {
	if Good.Label() != "bueno" || Bad.Label() != "malo" {
		t.Fatalf("unexpected labels %q %q", Good.Label(), Bad.Label())
	}
}

func TestCustomRange(t *testing.T) {
	r := Range{TempLow: 18, TempHigh: 20, HumiLow: 30, HumiHigh: 50}
	if r.Classify(19, 40) != Good {
		t.Fatalf("expected custom range to accept 19C 40%%")
	}
	if r.Classify(22, 45) != Bad {
		t.Fatalf("expected custom range to reject 22C")
	}
}
