package model

import (
	"time"

	"promo-bot/internal/domain"
)

// PlanNone is the plan code of a user who was never activated.
const PlanNone = "none"

// Plan is a fixed subscription tier. Plans are a static catalogue; purchase happens
// out of band and an administrator activates the user with /active.
type Plan struct {
	Code     string
	Days     int
	Label    string
	PriceUSD int
}

var plans = []Plan{
	{Code: "1W", Days: 7, Label: "1 Week", PriceUSD: 2},
	{Code: "1M", Days: 30, Label: "1 Month", PriceUSD: 6},
	{Code: "3M", Days: 90, Label: "3 Months", PriceUSD: 15},
	{Code: "1Y", Days: 365, Label: "1 Year", PriceUSD: 30},
}

// Plans returns the catalogue in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func PlanByCode(code string) (Plan, error) {
	for _, p := range plans {
		if p.Code == code {
			return p, nil
		}
	}
	return Plan{}, domain.ErrInvalidPlanCode
}

// ExpiryFrom returns the expiry of a plan activated at t.
func (p Plan) ExpiryFrom(t time.Time) time.Time {
	return t.AddDate(0, 0, p.Days)
}
