package interview

import "testing"

func TestIsCompatible(t *testing.T) {
	for score := 0.0; score < 60; score += 0.5 {
		if IsCompatible(score) {
			t.Fatalf("expected %v to be incompatible", score)
		}
	}
	for score := 60.0; score <= 100; score += 0.5 {
		if !IsCompatible(score) {
			t.Fatalf("expected %v to be compatible", score)
		}
	}
	if IsCompatible(59.999) {
		t.Fatalf("expected 59.999 to be incompatible")
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		analysis *MatchAnalysis
		expect   Verdict
	}{
		{name: "no analysis", analysis: nil, expect: VerdictIndeterminate},
		{name: "zero score", analysis: &MatchAnalysis{MatchScore: 0}, expect: VerdictReject},
		{name: "below threshold", analysis: &MatchAnalysis{MatchScore: 59}, expect: VerdictReject},
		{name: "boundary", analysis: &MatchAnalysis{MatchScore: 60}, expect: VerdictAccept},
		{name: "perfect", analysis: &MatchAnalysis{MatchScore: 100}, expect: VerdictAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.analysis); got != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, got)
			}
		})
	}
}
