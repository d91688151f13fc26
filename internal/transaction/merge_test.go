package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFeatures_NilBundleIsNoop(t *testing.T) {
	txn := &Transaction{}
	txn.ApplyFeatures(nil)
	assert.Nil(t, txn.AmountZScore)
	assert.Nil(t, txn.HourOfDay)
}

func TestApplyFeatures_SetsOnlyProvidedFields(t *testing.T) {
	z := 2.5
	hour := 3
	txn := &Transaction{}

	txn.ApplyFeatures(&Features{
		AmountZScore: &z,
		HourOfDay:    &hour,
	})

	require.NotNil(t, txn.AmountZScore)
	assert.Equal(t, 2.5, *txn.AmountZScore)
	require.NotNil(t, txn.HourOfDay)
	assert.Equal(t, 3, *txn.HourOfDay)

	// Absent fields stay absent, never invented
	assert.Nil(t, txn.AmountToAvgRatio)
	assert.Nil(t, txn.TxnCount1H)
	assert.Nil(t, txn.IsNewDevice)
}

func TestApplyFeatures_NeverClearsExistingValues(t *testing.T) {
	z := 1.0
	ratio := 4.2
	txn := &Transaction{}
	txn.ApplyFeatures(&Features{AmountZScore: &z, AmountToAvgRatio: &ratio})

	// A later bundle with a nil field must not erase the stored value.
	z2 := 9.9
	txn.ApplyFeatures(&Features{AmountZScore: &z2})

	require.NotNil(t, txn.AmountZScore)
	assert.Equal(t, 9.9, *txn.AmountZScore)
	require.NotNil(t, txn.AmountToAvgRatio)
	assert.Equal(t, 4.2, *txn.AmountToAvgRatio)
}

func TestApplyFeatures_CopiesValuesNotPointers(t *testing.T) {
	z := 1.5
	bundle := &Features{AmountZScore: &z}
	txn := &Transaction{}
	txn.ApplyFeatures(bundle)

	// Mutating the source bundle must not change the stored record.
	z = 7.0
	assert.Equal(t, 1.5, *txn.AmountZScore)
}
