package utils

import (
	"fmt"
	"math"

	"rentshare-backend/internal/domain"
)

// CalculateBookingPricing computes the fee breakdown for renting an item at
// dailyRate (minor units) for numberOfDays. Commission is charged on the rental
// base only, never on the deposit or the renter-facing service fee.
func CalculateBookingPricing(dailyRate int64, numberOfDays int, includeInsurance bool, securityDeposit int64, rates domain.PricingRates) (domain.PricingBreakdown, error) {
	var problems []string
	if dailyRate <= 0 {
		problems = append(problems, "daily rate must be positive")
	}
	if numberOfDays < 1 {
		problems = append(problems, "number of days must be at least 1")
	}
	if securityDeposit < 0 {
		problems = append(problems, "security deposit cannot be negative")
	}
	if len(problems) > 0 {
		return domain.PricingBreakdown{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, domain.NewValidationError(problems...))
	}

	base := dailyRate * int64(numberOfDays)
	serviceFee := percentOf(base, rates.ServiceFeePercent)
	var insurance int64
	if includeInsurance {
		insurance = percentOf(base, rates.InsurancePercent)
	}
	commission := percentOf(base, rates.CommissionPercent)

	return domain.PricingBreakdown{
		DailyRate:          dailyRate,
		NumberOfDays:       numberOfDays,
		BasePrice:          base,
		ServiceFee:         serviceFee,
		Insurance:          insurance,
		SecurityDeposit:    securityDeposit,
		PlatformCommission: commission,
		OwnerReceives:      base - commission,
		TotalRenterPays:    base + serviceFee + insurance + securityDeposit,
	}, nil
}

// ApplyCredit reduces the renter total by credit, capped at maxPercent of the
// total. The returned breakdown records the credit actually applied.
func ApplyCredit(p domain.PricingBreakdown, credit int64, maxPercent float64) domain.PricingBreakdown {
	if credit <= 0 || p.TotalRenterPays <= 0 {
		return p
	}
	if maxPercent < 0 {
		maxPercent = 0
	}
	if maxPercent > 1 {
		maxPercent = 1
	}
	limit := int64(math.Floor(float64(p.TotalRenterPays) * maxPercent))
	applied := min(credit, limit, p.TotalRenterPays)

	p.CreditApplied = applied
	p.TotalRenterPays -= applied
	return p
}

// CommissionOn returns the platform commission for an amount.
func CommissionOn(amount int64, rate float64) int64 {
	return percentOf(amount, rate)
}

func percentOf(amount int64, rate float64) int64 {
	if amount <= 0 || rate <= 0 {
		return 0
	}
	return int64(math.Round(float64(amount) * rate))
}
