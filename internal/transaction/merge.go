package transaction

// ApplyFeatures merges a scoring feature bundle onto the transaction.
// Only non-nil bundle fields are copied; fields the oracle did not compute
// leave the transaction's current value untouched, so a merge never clears
// a previously set feature back to nil. Pointer values are copied, not
// aliased, so later mutation of the bundle cannot leak into the record.
func (t *Transaction) ApplyFeatures(f *Features) {
	if f == nil {
		return
	}
	if f.AmountZScore != nil {
		t.AmountZScore = ptr(*f.AmountZScore)
	}
	if f.AmountToAvgRatio != nil {
		t.AmountToAvgRatio = ptr(*f.AmountToAvgRatio)
	}
	if f.TravelVelocityKMH != nil {
		t.TravelVelocityKMH = ptr(*f.TravelVelocityKMH)
	}
	if f.TravelDistanceKM != nil {
		t.TravelDistanceKM = ptr(*f.TravelDistanceKM)
	}
	if f.TxnCount1H != nil {
		t.TxnCount1H = ptr(*f.TxnCount1H)
	}
	if f.TxnCount24H != nil {
		t.TxnCount24H = ptr(*f.TxnCount24H)
	}
	if f.TxnCount7D != nil {
		t.TxnCount7D = ptr(*f.TxnCount7D)
	}
	if f.SecondsSinceLastTxn != nil {
		t.SecondsSinceLastTxn = ptr(*f.SecondsSinceLastTxn)
	}
	if f.HourOfDay != nil {
		t.HourOfDay = ptr(*f.HourOfDay)
	}
	if f.IsNewDevice != nil {
		t.IsNewDevice = ptr(*f.IsNewDevice)
	}
	if f.IsNewMerchant != nil {
		t.IsNewMerchant = ptr(*f.IsNewMerchant)
	}
}

func ptr[T any](v T) *T {
	return &v
}
