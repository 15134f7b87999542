package domain

type Listing struct {
	ID                   string `json:"id"`
	OwnerID              string `json:"owner_id"`
	Title                string `json:"title"`
	DailyRateCents       int64  `json:"daily_rate_cents"`
	SecurityDepositCents int64  `json:"security_deposit_cents"`
	InstantBook          bool   `json:"instant_book"`
	Active               bool   `json:"active"`
}
