package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCustomsSchedule() CustomsSchedule {
	return CustomsSchedule{
		USDeMinimisUSD:        d("800.00"),
		USCustomsStandardRate: d("0.025"),
		EUVATRate:             d("0.21"),
		EUCustomsFlatDutyEUR:  d("3.00"),
		UKLowValueThresholdUS: d("135.00"),
		UKVATRate:             d("0.20"),
		ForexBuffer:           d("0.02"),
	}
}

func TestCalculateCustoms_DeMinimis_BelowThreshold(t *testing.T) {
	fee, err := CalculateCustoms(d("500.00"), d("1.08"), RegimeDeMinimis, testCustomsSchedule())
	require.NoError(t, err)
	assert.True(t, fee.IsZero())
}

func TestCalculateCustoms_DeMinimis_AboveThreshold(t *testing.T) {
	fee, err := CalculateCustoms(d("1000.00"), d("1.08"), RegimePreJuly2026, testCustomsSchedule())
	require.NoError(t, err)
	assert.True(t, d("25.00").Equal(fee), "got %s", fee)
}

func TestCalculateCustoms_IOSSEU(t *testing.T) {
	fee, err := CalculateCustoms(d("100.00"), d("1.08"), RegimeIOSSEU, testCustomsSchedule())
	require.NoError(t, err)
	assert.True(t, fee.GreaterThan(d("21.00")), "got %s", fee)
}

func TestCalculateCustoms_UKLowValue(t *testing.T) {
	sched := testCustomsSchedule()
	below, err := CalculateCustoms(d("100.00"), d("1.08"), RegimeUKLowValue, sched)
	require.NoError(t, err)
	assert.True(t, below.IsZero())

	above, err := CalculateCustoms(d("200.00"), d("1.08"), RegimeUKLowValue, sched)
	require.NoError(t, err)
	assert.True(t, d("40.00").Equal(above), "got %s", above)
}

func TestCalculateCustoms_UnknownRegime(t *testing.T) {
	_, err := CalculateCustoms(d("100.00"), d("1.08"), Regime("unknown"), testCustomsSchedule())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidArgument))
}
