package money

import "github.com/shopspring/decimal"

// ForwarderSettings carries a subscriber's optional freight-forwarder
// configuration (profile.forwarder_preferences in SPEC_FULL.md §3).
type ForwarderSettings struct {
	Enabled             bool
	ReceivingFee        decimal.Decimal
	ConsolidationFee    decimal.Decimal
	InsuranceRate       decimal.Decimal
}

// ProfitInputs bundles the inputs to CalculateNetProfit so the function
// signature stays readable.
type ProfitInputs struct {
	CMPriceEUR    decimal.Decimal
	TCGPriceUSD   decimal.Decimal
	ForexRate     decimal.Decimal
	ForexBuffer   decimal.Decimal
	Condition     CardmarketGrade
	CustomsRegime Regime
	ShippingUSD   decimal.Decimal
	Forwarder     ForwarderSettings
	Fees          FeeSchedule
	Customs       CustomsSchedule
}

// ProfitBreakdown is the 2dp-quantized result of CalculateNetProfit, per
// SPEC_FULL.md §4.A.
type ProfitBreakdown struct {
	COGSUSD               decimal.Decimal
	ConditionAdjustedPrice decimal.Decimal
	ConditionMultiplier   decimal.Decimal
	TCGFees               decimal.Decimal
	Customs               decimal.Decimal
	Shipping              decimal.Decimal
	ForwarderCosts        decimal.Decimal
	Revenue               decimal.Decimal
	NetProfit             decimal.Decimal
	MarginPct             decimal.Decimal
}

// CalculateNetProfit composes the full net-profit breakdown described in
// SPEC_FULL.md §4.A:
//
//	cogs_usd = EUR->USD(cm_price_eur)
//	adjusted_sell = tcg_price_usd * condition_multiplier
//	revenue = adjusted_sell - tcg_fees
//	net_profit = revenue - cogs - customs - shipping - forwarder
//	margin_pct = 100 * net_profit / revenue   (0 if revenue == 0)
//
// PO condition fails with ConditionSuppressed; negative prices or a
// non-positive forex rate fail with InvalidArgument.
func CalculateNetProfit(in ProfitInputs) (ProfitBreakdown, error) {
	if in.CMPriceEUR.IsNegative() {
		return ProfitBreakdown{}, New(KindInvalidArgument, "cm_price_eur must be non-negative")
	}
	if in.TCGPriceUSD.IsNegative() {
		return ProfitBreakdown{}, New(KindInvalidArgument, "tcg_price_usd must be non-negative")
	}
	if !in.ForexRate.IsPositive() {
		return ProfitBreakdown{}, New(KindInvalidArgument, "forex_rate must be positive")
	}
	if in.Forwarder.ReceivingFee.IsNegative() || in.Forwarder.ConsolidationFee.IsNegative() || in.Forwarder.InsuranceRate.IsNegative() {
		return ProfitBreakdown{}, New(KindInvalidArgument, "forwarder settings must be non-negative")
	}

	adjusted, multiplier, err := ConditionAdjustedSellPrice(in.TCGPriceUSD, in.Condition)
	if err != nil {
		return ProfitBreakdown{}, err
	}

	cogsUSD, err := ConvertEURToUSD(in.CMPriceEUR, in.ForexRate, in.ForexBuffer)
	if err != nil {
		return ProfitBreakdown{}, err
	}

	tcgFees, err := PlatformFee(adjusted, PlatformTCGPlayer, in.Fees)
	if err != nil {
		return ProfitBreakdown{}, err
	}

	customs, err := CalculateCustoms(cogsUSD, in.ForexRate, in.CustomsRegime, in.Customs)
	if err != nil {
		return ProfitBreakdown{}, err
	}

	shipping := quantize2(in.ShippingUSD)

	forwarderCosts := zero
	if in.Forwarder.Enabled {
		insuranceEUR := in.CMPriceEUR.Mul(in.Forwarder.InsuranceRate)
		insuranceUSD, err := ConvertEURToUSD(insuranceEUR, in.ForexRate, in.ForexBuffer)
		if err != nil {
			return ProfitBreakdown{}, err
		}
		forwarderCosts = quantize2(in.Forwarder.ReceivingFee.Add(in.Forwarder.ConsolidationFee).Add(insuranceUSD))
	}

	revenue := quantize2(adjusted.Sub(tcgFees))
	totalCosts := cogsUSD.Add(customs).Add(shipping).Add(forwarderCosts)
	netProfit := quantize2(revenue.Sub(totalCosts))

	marginPct := zero
	if !revenue.IsZero() {
		marginPct = quantize2(netProfit.Div(revenue).Mul(hundred))
	}

	return ProfitBreakdown{
		COGSUSD:                quantize2(cogsUSD),
		ConditionAdjustedPrice: adjusted,
		ConditionMultiplier:    multiplier,
		TCGFees:                tcgFees,
		Customs:                quantize2(customs),
		Shipping:               shipping,
		ForwarderCosts:         quantize2(forwarderCosts),
		Revenue:                revenue,
		NetProfit:              netProfit,
		MarginPct:              marginPct,
	}, nil
}
