// Package engine composes the Schedule X reconciliation, the sourcing
// resolver, and the Schedule Y factors into one filing breakdown.
//
// Every computation is a pure function of its input: no I/O, no shared
// state, and identical inputs always produce a byte-identical breakdown
// (fixed summation order, fixed rounding).
package engine

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/munitax/internal/model"
	"github.com/sells-group/munitax/internal/schedulex"
	"github.com/sells-group/munitax/internal/scheduley"
	"github.com/sells-group/munitax/internal/sourcing"
)

var hundred = decimal.NewFromInt(100)

// Engine carries the jurisdiction defaults applied to every filing.
// Engines are stateless and safe for concurrent use.
type Engine struct {
	jurisdiction      string
	varianceThreshold decimal.Decimal
}

// New creates an Engine for a jurisdiction. A zero variance threshold
// selects the 20% default.
func New(jurisdiction string, varianceThreshold decimal.Decimal) *Engine {
	if varianceThreshold.IsZero() {
		varianceThreshold = schedulex.DefaultVarianceThreshold
	}
	return &Engine{jurisdiction: jurisdiction, varianceThreshold: varianceThreshold}
}

// ComputeFilingBreakdown runs the full pipeline for one filing period:
// reconciliation, per-transaction sourcing, factor percentages, the
// elected combination formula, and the final jurisdiction-taxable
// income.
//
// Reconciliation is independent of apportionment, so a factor validation
// error still returns a breakdown carrying the completed reconciliation
// alongside the error; the apportionment section of that breakdown is
// not usable.
func (e *Engine) ComputeFilingBreakdown(in model.FilingInput) (*model.FilingBreakdown, error) {
	jurisdiction := in.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = e.jurisdiction
	}

	elections := in.Elections
	if elections == (model.Elections{}) {
		elections = model.DefaultElections()
	}
	if err := elections.Validate(); err != nil {
		return nil, err
	}

	breakdown := &model.FilingBreakdown{
		Filer:        in.Filer,
		Period:       in.Period,
		Jurisdiction: jurisdiction,
	}

	recon, warnings := schedulex.Reconcile(in.Income, e.varianceThreshold)
	breakdown.Reconciliation = recon

	resolver, err := sourcing.NewResolver(jurisdiction, elections, in.Nexus, in.Factors, in.Group)
	if err != nil {
		return nil, err
	}
	// Transactions may arrive at the top level or embedded in the sales
	// factor; both placements feed the resolver, top-level first so the
	// sourcing detail keeps a stable order.
	txs := in.Transactions
	if embedded := in.Factors.Sales.Transactions; len(embedded) > 0 {
		txs = make([]model.SaleTransaction, 0, len(in.Transactions)+len(embedded))
		txs = append(txs, in.Transactions...)
		txs = append(txs, embedded...)
	}
	sourced, sourcingWarnings, err := resolver.Resolve(txs)
	if err != nil {
		return nil, err
	}
	breakdown.Sourcing = sourced
	warnings = append(warnings, sourcingWarnings...)

	adjustedFactors := in.Factors
	adjustedFactors.Sales.LocalSales = sourced.LocalSales
	adjustedFactors.Sales.EverywhereSales = sourced.EverywhereSales
	adjustedFactors.Sales.ThrowbackAdjustment = sourced.ThrowbackAdjustment
	warnings = append(warnings, scheduley.FactorWarnings(adjustedFactors)...)
	breakdown.Warnings = warnings

	propertyPct, err := scheduley.PropertyFactorPercent(adjustedFactors.Property)
	if err != nil {
		return breakdown, eris.Wrap(err, "engine: property factor")
	}
	payrollPct, err := scheduley.PayrollFactorPercent(adjustedFactors.Payroll)
	if err != nil {
		return breakdown, eris.Wrap(err, "engine: payroll factor")
	}
	salesPct, err := scheduley.SalesFactorPercent(adjustedFactors.Sales)
	if err != nil {
		return breakdown, eris.Wrap(err, "engine: sales factor")
	}
	finalPct, err := scheduley.CombinedApportionment(elections.Formula, propertyPct, payrollPct, salesPct)
	if err != nil {
		return breakdown, eris.Wrap(err, "engine: combined apportionment")
	}

	breakdown.Apportionment = model.ApportionmentResult{
		PropertyPct: propertyPct.Round(4),
		PayrollPct:  payrollPct.Round(4),
		SalesPct:    salesPct.Round(4),
		FinalPct:    finalPct.Round(4),
	}
	// The taxable income is derived from the rounded final percentage so
	// the printed breakdown reconciles line by line.
	breakdown.JurisdictionTaxableIncome = recon.AdjustedMunicipalIncome.Mul(breakdown.Apportionment.FinalPct).Div(hundred).Round(2)

	return breakdown, nil
}
