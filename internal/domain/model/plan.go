package model

import "examvault-membership/internal/domain"

// PlanType is the closed set of purchasable VIP plans.
type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

// ParsePlanType validates a raw plan tag coming from an API request.
func ParsePlanType(s string) (PlanType, error) {
	switch PlanType(s) {
	case PlanMonthly:
		return PlanMonthly, nil
	case PlanYearly:
		return PlanYearly, nil
	default:
		return "", domain.ErrInvalidArgument
	}
}

// DurationDays returns the entitlement time a plan grants.
func (p PlanType) DurationDays() int {
	if p == PlanYearly {
		return 365
	}
	return 30
}

func (p PlanType) Valid() bool { return p == PlanMonthly || p == PlanYearly }
