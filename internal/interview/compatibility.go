package interview

// CompatibilityThreshold is the inclusive minimum match score to proceed.
const CompatibilityThreshold = 60

// Verdict is the outcome of the compatibility gate.
type Verdict int

const (
	// VerdictIndeterminate is shown while no analysis is available.
	VerdictIndeterminate Verdict = iota
	VerdictAccept
	VerdictReject
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "accept"
	case VerdictReject:
		return "reject"
	default:
		return "indeterminate"
	}
}

func IsCompatible(matchScore float64) bool {
	return matchScore >= CompatibilityThreshold
}

// Evaluate applies the gate to an analysis. A nil analysis is indeterminate.
func Evaluate(analysis *MatchAnalysis) Verdict {
	if analysis == nil {
		return VerdictIndeterminate
	}
	if IsCompatible(analysis.MatchScore) {
		return VerdictAccept
	}
	return VerdictReject
}
