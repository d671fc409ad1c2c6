package money

import "github.com/shopspring/decimal"

// Platform is a selling marketplace with its own fee formula.
type Platform string

const (
	PlatformTCGPlayer  Platform = "tcgplayer"
	PlatformEBay       Platform = "ebay"
	PlatformCardmarket Platform = "cardmarket"
)

// FeeSchedule carries the configured fee constants so callers don't need
// a package-global config dependency inside the money kernel.
type FeeSchedule struct {
	TCGPlayerRate  decimal.Decimal
	TCGPlayerCap   decimal.Decimal
	TCGPlayerFixed decimal.Decimal
	EBayRate       decimal.Decimal
	CardmarketRate decimal.Decimal
}

// PlatformFee computes the selling-platform fee for price on platform,
// per SPEC_FULL.md §4.A:
//
//	TCGPlayer:  min(P * rate, cap) + fixed
//	eBay:       P * rate
//	Cardmarket: P * rate
func PlatformFee(price decimal.Decimal, platform Platform, sched FeeSchedule) (decimal.Decimal, error) {
	if price.IsNegative() {
		return zero, New(KindInvalidArgument, "price must be non-negative")
	}

	switch platform {
	case PlatformTCGPlayer:
		variable := decimal.Min(price.Mul(sched.TCGPlayerRate), sched.TCGPlayerCap)
		return quantize2(variable.Add(sched.TCGPlayerFixed)), nil
	case PlatformEBay:
		return quantize2(price.Mul(sched.EBayRate)), nil
	case PlatformCardmarket:
		return quantize2(price.Mul(sched.CardmarketRate)), nil
	default:
		return zero, New(KindInvalidArgument, "unsupported platform: "+string(platform))
	}
}
