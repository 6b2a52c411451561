// Package scheduley implements the Schedule Y apportionment factors:
// property, payroll, and sales percentages and their weighted
// combination into the final jurisdiction percentage.
//
// Zero everywhere-denominators yield a zero percentage by convention;
// negative denominators and percentages outside [0,100] are validation
// errors, never silently clamped.
package scheduley

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/munitax/internal/model"
)

// Validation errors. A failing factor returns no result; independent
// factors still complete.
var (
	ErrNegativeDenominator = eris.New("scheduley: negative everywhere denominator")
	ErrPercentOutOfRange   = eris.New("scheduley: factor percentage outside [0,100]")
)

// RentCapitalizationMultiplier converts annual rent into a property
// value equivalent: rented property enters the factor at eight times the
// annual rent.
var RentCapitalizationMultiplier = decimal.NewFromInt(8)

var (
	hundred = decimal.NewFromInt(100)
	three   = decimal.NewFromInt(3)
	quarter = decimal.RequireFromString("0.25")
	half    = decimal.RequireFromString("0.50")
)

// PropertyFactorPercent computes the property percentage with rents
// capitalized at 8x on both sides of the ratio.
func PropertyFactorPercent(f model.PropertyFactor) (decimal.Decimal, error) {
	local := f.LocalValue.Add(f.LocalRentAnnual.Mul(RentCapitalizationMultiplier))
	everywhere := f.EverywhereValue.Add(f.EverywhereRentAnnual.Mul(RentCapitalizationMultiplier))
	return factorPercent("property", local, everywhere)
}

// PayrollFactorPercent computes the payroll percentage.
func PayrollFactorPercent(f model.PayrollFactor) (decimal.Decimal, error) {
	return factorPercent("payroll", f.LocalPayroll, f.EverywherePayroll)
}

// SalesFactorPercent computes the sales percentage. LocalSales must
// already include the sourcing resolver's throwback adjustment.
func SalesFactorPercent(f model.SalesFactor) (decimal.Decimal, error) {
	return factorPercent("sales", f.LocalSales, f.EverywhereSales)
}

// CombinedApportionment folds the three factor percentages into the
// final jurisdiction percentage under the elected formula.
func CombinedApportionment(formula model.ApportionmentFormula, property, payroll, sales decimal.Decimal) (decimal.Decimal, error) {
	for _, p := range []decimal.Decimal{property, payroll, sales} {
		if outOfRange(p) {
			return decimal.Zero, eris.Wrapf(ErrPercentOutOfRange, "combined apportionment input %s", p.String())
		}
	}

	switch formula {
	case model.ThreeFactorEqualWeighted:
		return property.Add(payroll).Add(sales).Div(three), nil
	case model.FourFactorDoubleWeightedSales:
		// Sales occupies two of four equal slots.
		return property.Mul(quarter).Add(payroll.Mul(quarter)).Add(sales.Mul(half)), nil
	case model.SingleSalesFactor:
		return sales, nil
	}
	return decimal.Zero, eris.Errorf("scheduley: unknown apportionment formula %q", formula)
}

// FactorWarnings reports the non-fatal local-exceeds-everywhere findings
// on the raw factor inputs. Adjustments and rounding can legitimately
// push local near or past everywhere, so these are warnings, not errors.
func FactorWarnings(f model.ApportionmentFactors) []model.Warning {
	var warnings []model.Warning
	checks := []struct {
		field      string
		local      decimal.Decimal
		everywhere decimal.Decimal
	}{
		{"property", f.Property.LocalValue.Add(f.Property.LocalRentAnnual.Mul(RentCapitalizationMultiplier)), f.Property.EverywhereValue.Add(f.Property.EverywhereRentAnnual.Mul(RentCapitalizationMultiplier))},
		{"payroll", f.Payroll.LocalPayroll, f.Payroll.EverywherePayroll},
		{"sales", f.Sales.LocalSales, f.Sales.EverywhereSales},
	}
	for _, c := range checks {
		if c.local.GreaterThan(c.everywhere) {
			warnings = append(warnings, model.Warning{
				Code:    model.WarnLocalExceedsTotal,
				Field:   c.field,
				Message: "local " + c.field + " value " + c.local.String() + " exceeds everywhere value " + c.everywhere.String(),
			})
		}
	}
	return warnings
}

// factorPercent is the shared local/everywhere ratio with the zero- and
// negative-denominator conventions applied.
func factorPercent(name string, local, everywhere decimal.Decimal) (decimal.Decimal, error) {
	if everywhere.IsNegative() {
		return decimal.Zero, eris.Wrapf(ErrNegativeDenominator, "%s factor everywhere %s", name, everywhere.String())
	}
	if everywhere.IsZero() {
		return decimal.Zero, nil
	}
	pct := local.Div(everywhere).Mul(hundred)
	if outOfRange(pct) {
		return decimal.Zero, eris.Wrapf(ErrPercentOutOfRange, "%s factor %s", name, pct.String())
	}
	return pct, nil
}

func outOfRange(pct decimal.Decimal) bool {
	return pct.IsNegative() || pct.GreaterThan(hundred)
}
