package transaction

// Risk tier boundaries. Each bound is inclusive on the tier it opens, so a
// probability sitting exactly on a boundary belongs to the higher tier.
const (
	ThresholdMedium   = 0.30
	ThresholdHigh     = 0.60
	ThresholdCritical = 0.80
)

// Classify maps a fraud probability to a verdict. It is pure and total:
// every float input yields a (status, tier) pair, evaluated high to low.
func Classify(probability float64) (Status, RiskLevel) {
	switch {
	case probability >= ThresholdCritical:
		return StatusBlocked, RiskCritical
	case probability >= ThresholdHigh:
		return StatusFlagged, RiskHigh
	case probability >= ThresholdMedium:
		return StatusReview, RiskMedium
	default:
		return StatusApproved, RiskLow
	}
}
