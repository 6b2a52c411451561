// Package schedulex implements the Schedule X income reconciliation:
// the add-back and deduction adjustments that carry federal taxable
// income to adjusted municipal taxable income.
//
// Every function here is pure and total. Absent or negative inputs are
// treated as zero where the rule calls for it; no calculation fails.
// Money outputs are rounded half-up to 2 places at the result boundary;
// intermediate math is unrounded.
package schedulex

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/munitax/internal/model"
)

// DefaultVarianceThreshold is the reasonableness threshold applied when
// the caller does not configure one: adjusted income more than 20% away
// from federal income is flagged for review.
var DefaultVarianceThreshold = decimal.RequireFromString("0.20")

var (
	two                   = decimal.NewFromInt(2)
	intangibleExpenseRate = decimal.RequireFromString("0.05")
	charitableLimitRate   = decimal.RequireFromString("0.10")
)

// MealsAddBack restores the half of meals and entertainment expense that
// federal law allows but the jurisdiction does not. The input is the
// federal deduction actually taken (already cut to 50%), so the full
// disallowed expense is twice that figure.
func MealsAddBack(federalMealsDeduction decimal.Decimal) decimal.Decimal {
	if federalMealsDeduction.IsNegative() {
		return decimal.Zero
	}
	return federalMealsDeduction.Mul(two)
}

// FivePercentRule computes the presumed-expense add-back against
// non-taxable intangible income: 5% of interest, dividends, and capital
// gains combined. Callers with documented actual expenses greater than
// the presumption substitute those instead.
func FivePercentRule(interest, dividends, capitalGains decimal.Decimal) decimal.Decimal {
	total := nonNegative(interest).Add(nonNegative(dividends)).Add(nonNegative(capitalGains))
	return total.Mul(intangibleExpenseRate)
}

// RelatedPartyExcess computes the add-back for amounts paid to a related
// party above fair market value. Bargain purchases (paid below FMV)
// produce zero, never a negative add-back: only overpayment is adjusted.
func RelatedPartyExcess(paid, fairMarketValue decimal.Decimal) decimal.Decimal {
	excess := paid.Sub(fairMarketValue)
	if excess.IsNegative() {
		return decimal.Zero
	}
	return excess
}

// CapitalLossExcess computes the add-back for capital losses beyond
// capital gains.
func CapitalLossExcess(losses, gains decimal.Decimal) decimal.Decimal {
	excess := losses.Sub(gains)
	if excess.IsNegative() {
		return decimal.Zero
	}
	return excess
}

// CharitableContributionExcess computes the add-back for charitable
// contributions above 10% of taxable income before contributions.
// Carryforward from prior years reduces the excess; pass zero when no
// carryforward data is available (the engine does not own prior-year
// state).
func CharitableContributionExcess(contributions, taxableIncomeBeforeContributions, carryforward decimal.Decimal) decimal.Decimal {
	limit := nonNegative(taxableIncomeBeforeContributions).Mul(charitableLimitRate)
	excess := nonNegative(contributions).Sub(limit).Sub(nonNegative(carryforward))
	if excess.IsNegative() {
		return decimal.Zero
	}
	return excess
}

// TotalAddBacks sums all twenty add-back fields. Zero-valued fields
// contribute zero; no field is optional for summation. Field order is
// fixed so recomputation is bit-exact.
func TotalAddBacks(a model.AddBacks) decimal.Decimal {
	fields := []decimal.Decimal{
		a.StateLocalIncomeTaxes,
		a.IncomeTaxesOtherMunicipalities,
		a.DepreciationAdjustment,
		a.MealsAndEntertainment,
		a.CapitalLossExcess,
		a.CharitableContributionExcess,
		a.RelatedPartyExcess,
		a.ExpensesOnIntangibleIncome,
		a.GuaranteedPayments,
		a.PartnerRetirementContributions,
		a.FederalNetOperatingLoss,
		a.QualifiedBusinessIncomeDeduction,
		a.DomesticProductionActivities,
		a.ReitDividendsPaid,
		a.PassThroughEntityLosses,
		a.PenaltiesAndFines,
		a.ClubDuesAndMemberships,
		a.PoliticalContributions,
		a.OfficerLifeInsurancePremiums,
		a.OtherAddBacks,
	}
	total := decimal.Zero
	for _, f := range fields {
		total = total.Add(f)
	}
	return total
}

// TotalDeductions sums all seven deduction fields in fixed order.
func TotalDeductions(d model.Deductions) decimal.Decimal {
	fields := []decimal.Decimal{
		d.InterestIncome,
		d.Dividends,
		d.CapitalGains,
		d.IntangibleRoyalties,
		d.PassThroughEntityIncome,
		d.NOLCarryforward,
		d.OtherDeductions,
	}
	total := decimal.Zero
	for _, f := range fields {
		total = total.Add(f)
	}
	return total
}

// AdjustedMunicipalIncome applies the reconciliation identity:
// federal + add-backs - deductions.
func AdjustedMunicipalIncome(federal, totalAddBacks, totalDeductions decimal.Decimal) decimal.Decimal {
	return federal.Add(totalAddBacks).Sub(totalDeductions)
}

// CheckVariance compares adjusted income against the federal figure.
// A zero federal income reports no variance by definition (no division
// by zero); this is a defined edge case, not an error.
func CheckVariance(federal, adjusted, threshold decimal.Decimal) model.VarianceCheck {
	if federal.IsZero() {
		return model.VarianceCheck{HasVariance: false, VariancePct: decimal.Zero}
	}
	pct := adjusted.Sub(federal).Abs().Div(federal.Abs())
	return model.VarianceCheck{
		HasVariance: pct.GreaterThan(threshold),
		VariancePct: pct.Round(4),
	}
}

// Reconcile runs the full Schedule X computation over one input and
// returns the derived result plus any validation warnings. Warnings
// never abort the computation.
func Reconcile(in model.ReconciliationInput, varianceThreshold decimal.Decimal) (model.ReconciliationResult, []model.Warning) {
	warnings := Validate(in)

	totalAdd := TotalAddBacks(in.AddBacks)
	totalDed := TotalDeductions(in.Deductions)
	adjusted := AdjustedMunicipalIncome(in.FederalTaxableIncome, totalAdd, totalDed)

	variance := CheckVariance(in.FederalTaxableIncome, adjusted, varianceThreshold)
	if variance.HasVariance {
		warnings = append(warnings, model.Warning{
			Code:    model.WarnVarianceExceeded,
			Message: "adjusted municipal income varies from federal taxable income by " + variance.VariancePct.Mul(decimal.NewFromInt(100)).Round(2).String() + "%",
		})
	}

	return model.ReconciliationResult{
		TotalAddBacks:           totalAdd.Round(2),
		TotalDeductions:         totalDed.Round(2),
		AdjustedMunicipalIncome: adjusted.Round(2),
		Variance:                variance,
	}, warnings
}

// Validate checks the description invariants on the "other" fields.
// Findings are warnings: the computation still completes.
func Validate(in model.ReconciliationInput) []model.Warning {
	var warnings []model.Warning
	if !in.AddBacks.OtherAddBacks.IsZero() && in.AddBacks.OtherAddBacksDescription == "" {
		warnings = append(warnings, model.Warning{
			Code:    model.WarnMissingDescription,
			Field:   "add_backs.other_add_backs",
			Message: "other add-backs reported without a description",
		})
	}
	if !in.Deductions.OtherDeductions.IsZero() && in.Deductions.OtherDeductionsDescription == "" {
		warnings = append(warnings, model.Warning{
			Code:    model.WarnMissingDescription,
			Field:   "deductions.other_deductions",
			Message: "other deductions reported without a description",
		})
	}
	return warnings
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
