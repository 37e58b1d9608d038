package entitlements

import "strings"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// EntitlementPremium is the entitlement name the purchase backend grants.
const EntitlementPremium = "premium"

// NormalizePlan folds arbitrary stored plan strings onto a known plan.
func NormalizePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPremium):
		return PlanPremium
	default:
		return PlanFree
	}
}

// PlanFor maps a resolved premium flag onto the internal plan.
func PlanFor(isPremium bool) Plan {
	if isPremium {
		return PlanPremium
	}
	return PlanFree
}

// MaxHabits returns how many active habits a plan allows; negative means
// unlimited.
func MaxHabits(plan Plan) int {
	switch plan {
	case PlanPremium:
		return -1
	default:
		return 3
	}
}

// CanWeeklyCadence reports whether weekly habits are available on the plan.
func CanWeeklyCadence(plan Plan) bool {
	return plan == PlanPremium
}

// CanExportHistory reports whether check-in history export is available.
func CanExportHistory(plan Plan) bool {
	return plan == PlanPremium
}
