package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeeSchedule() FeeSchedule {
	return FeeSchedule{
		TCGPlayerRate:  d("0.1035"),
		TCGPlayerCap:   d("75.00"),
		TCGPlayerFixed: d("0.30"),
		EBayRate:       d("0.1325"),
		CardmarketRate: d("0.05"),
	}
}

func TestPlatformFee_TCGPlayer_BelowCap(t *testing.T) {
	fee, err := PlatformFee(d("100.00"), PlatformTCGPlayer, testFeeSchedule())
	require.NoError(t, err)
	assert.True(t, d("10.65").Equal(fee), "got %s", fee)
}

func TestPlatformFee_TCGPlayer_AtAndAboveCap(t *testing.T) {
	sched := testFeeSchedule()

	below, err := PlatformFee(d("700.00"), PlatformTCGPlayer, sched)
	require.NoError(t, err)
	above, err := PlatformFee(d("2000.00"), PlatformTCGPlayer, sched)
	require.NoError(t, err)

	// Once the variable component clears the cap, fee is constant (cap + fixed).
	assert.True(t, above.Equal(sched.TCGPlayerCap.Add(sched.TCGPlayerFixed)))
	assert.True(t, below.LessThanOrEqual(above))
}

func TestPlatformFee_Monotonic(t *testing.T) {
	sched := testFeeSchedule()
	prev := d("0")
	for _, p := range []string{"10.00", "50.00", "100.00", "500.00", "1000.00"} {
		fee, err := PlatformFee(d(p), PlatformTCGPlayer, sched)
		require.NoError(t, err)
		assert.True(t, fee.GreaterThanOrEqual(prev))
		prev = fee
	}
}

func TestPlatformFee_RejectsNegativePrice(t *testing.T) {
	_, err := PlatformFee(d("-1.00"), PlatformTCGPlayer, testFeeSchedule())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidArgument))
}

func TestPlatformFee_UnknownPlatform(t *testing.T) {
	_, err := PlatformFee(d("10.00"), Platform("unknown"), testFeeSchedule())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidArgument))
}
