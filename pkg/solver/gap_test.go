package solver

import "testing"

func TestParseGap(t *testing.T) {
	cases := []struct {
		name       string
		message    string
		wantAbs    float64
		wantGapPct float64
		wantOK     bool
	}{
		{
			name:       "P7 literal example",
			message:    "absmipgap=106714, relmipgap=29.0867",
			wantAbs:    106714,
			wantGapPct: 2908.67,
			wantOK:     true,
		},
		{
			name:       "P7 inf example",
			message:    "solve limit reached, relmipgap=inf",
			wantAbs:    0,
			wantGapPct: InfRelGap,
			wantOK:     true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			abs, pct, ok := ParseGap(c.message)
			if ok != c.wantOK {
				t.Fatalf("ok = %v, want %v", ok, c.wantOK)
			}
			if abs != c.wantAbs {
				t.Errorf("abs = %v, want %v", abs, c.wantAbs)
			}
			if pct != c.wantGapPct {
				t.Errorf("gapPercent = %v, want %v", pct, c.wantGapPct)
			}
		})
	}
}

func TestParseGapSolvedNoGap(t *testing.T) {
	abs, pct, ok := ParseGap("optimal solution found")
	if ok {
		t.Fatalf("expected ok=false when no gap pattern present")
	}
	if abs != 0 || pct != 0 {
		t.Fatalf("expected zero values, got abs=%v pct=%v", abs, pct)
	}
}
