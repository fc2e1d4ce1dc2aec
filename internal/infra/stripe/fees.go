package stripe

import "math"

// Stripe processing fees for Australia.
const (
	domesticFeeRate      = 0.0175
	internationalFeeRate = 0.029
	fixedFeeCents        = 30
)

// FeeBreakdown itemizes the processing fee on a checkout amount.
type FeeBreakdown struct {
	OriginalCents      int64
	PercentageFeeCents int64
	FixedFeeCents      int64
	TotalFeeCents      int64
	TotalWithFeesCents int64
	FeePercent         float64
}

// CalculateFees computes Stripe's processing fee (1.75% domestic, 2.9%
// international, plus 30c fixed) for amountCents.
func CalculateFees(amountCents int64, international bool) FeeBreakdown {
	rate := domesticFeeRate
	if international {
		rate = internationalFeeRate
	}

	percentage := int64(math.Round(float64(amountCents) * rate))
	total := percentage + fixedFeeCents

	f := FeeBreakdown{
		OriginalCents:      amountCents,
		PercentageFeeCents: percentage,
		FixedFeeCents:      fixedFeeCents,
		TotalFeeCents:      total,
		TotalWithFeesCents: amountCents + total,
	}
	if amountCents > 0 {
		f.FeePercent = float64(total) / float64(amountCents) * 100
	}
	return f
}

// FeeLine turns a fee breakdown into a bill line that gets charged alongside
// the booking. No additional tax applies to the fee.
func FeeLine(f FeeBreakdown) BillLine {
	return BillLine{
		Description: "Payment Processing Fee",
		Quantity:    1,
		PriceCents:  f.TotalFeeCents,
		Rate:        0,
		Gross:       true,
	}
}
