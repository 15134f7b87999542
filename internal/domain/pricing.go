package domain

// PricingBreakdown is derived from a listing's rate and a booking's duration.
// It is never persisted on its own.
type PricingBreakdown struct {
	DailyRate          int64 `json:"daily_rate"`
	NumberOfDays       int   `json:"number_of_days"`
	BasePrice          int64 `json:"base_price"`
	ServiceFee         int64 `json:"service_fee"`
	Insurance          int64 `json:"insurance"`
	SecurityDeposit    int64 `json:"security_deposit"`
	PlatformCommission int64 `json:"platform_commission"`
	OwnerReceives      int64 `json:"owner_receives"`
	TotalRenterPays    int64 `json:"total_renter_pays"`
	CreditApplied      int64 `json:"credit_applied"`
}

// PricingRates are platform-wide percentages expressed as fractions.
type PricingRates struct {
	ServiceFeePercent float64
	InsurancePercent  float64
	CommissionPercent float64
	MaxCreditPercent  float64
}

func DefaultPricingRates() PricingRates {
	return PricingRates{
		ServiceFeePercent: 0.15,
		InsurancePercent:  0.10,
		CommissionPercent: 0.20,
		MaxCreditPercent:  0.50,
	}
}
