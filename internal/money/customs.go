package money

import "github.com/shopspring/decimal"

// Regime is one of the five recognized customs regimes from
// SPEC_FULL.md §4.A.
type Regime string

const (
	RegimeDeMinimis    Regime = "de_minimis"
	RegimePreJuly2026  Regime = "pre_july_2026"
	RegimeIOSSEU       Regime = "ioss_eu"
	RegimePostJuly2026 Regime = "post_july_2026"
	RegimeUKLowValue   Regime = "uk_low_value"
)

// CustomsSchedule carries the configured customs constants.
type CustomsSchedule struct {
	USDeMinimisUSD        decimal.Decimal
	USCustomsStandardRate decimal.Decimal
	EUVATRate             decimal.Decimal
	EUCustomsFlatDutyEUR  decimal.Decimal
	UKLowValueThresholdUS decimal.Decimal
	UKVATRate             decimal.Decimal
	ForexBuffer           decimal.Decimal
}

// CalculateCustoms computes import duty in USD for cogsUSD under regime,
// per SPEC_FULL.md §4.A. forexRate is the EUR/USD spot rate used to
// convert the EU flat duty (quoted in EUR) into USD.
func CalculateCustoms(cogsUSD, forexRate decimal.Decimal, regime Regime, sched CustomsSchedule) (decimal.Decimal, error) {
	switch regime {
	case RegimeDeMinimis, RegimePreJuly2026:
		if cogsUSD.LessThan(sched.USDeMinimisUSD) {
			return zero, nil
		}
		return quantize2(cogsUSD.Mul(sched.USCustomsStandardRate)), nil

	case RegimeIOSSEU, RegimePostJuly2026:
		vatCost := cogsUSD.Mul(sched.EUVATRate)
		flatDutyUSD, err := ConvertEURToUSD(sched.EUCustomsFlatDutyEUR, forexRate, sched.ForexBuffer)
		if err != nil {
			return zero, err
		}
		return quantize2(vatCost.Add(flatDutyUSD)), nil

	case RegimeUKLowValue:
		if cogsUSD.GreaterThan(sched.UKLowValueThresholdUS) {
			return quantize2(cogsUSD.Mul(sched.UKVATRate)), nil
		}
		return zero, nil

	default:
		return zero, New(KindInvalidArgument, "unsupported customs regime: "+string(regime))
	}
}
