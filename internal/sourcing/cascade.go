package sourcing

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/munitax/internal/model"
	"github.com/sells-group/munitax/internal/scheduley"
)

// cascadeStep is one rung of the service sourcing cascade. ok is false
// when the step lacks the data to decide, in which case the next rung
// runs. The ordering is strict: a later method is never evaluated while
// an earlier one has sufficient data, and no rung is skipped.
type cascadeStep struct {
	method model.ServiceSourcingMethod
	apply  func(tx model.SaleTransaction) (model.SourcedSale, bool)
}

// resolveService sources a SERVICES transaction through the cascade:
// market-based to the customer location, else cost-of-performance over
// the per-state payroll breakdown, else pro-rata over whichever factors
// have usable denominators. The elected method selects the starting
// rung; the cascade never runs a rung above it.
func (r *Resolver) resolveService(tx model.SaleTransaction) model.SourcedSale {
	steps := []cascadeStep{
		{model.MarketBased, r.marketBased},
		{model.CostOfPerformance, r.costOfPerformance},
		{model.ProRata, r.proRata},
	}

	start := 0
	for i, step := range steps {
		if step.method == r.elections.ServiceSourcing {
			start = i
			break
		}
	}

	for _, step := range steps[start:] {
		if sourced, ok := step.apply(tx); ok {
			return sourced
		}
	}
	// proRata is total; unreachable, but keep the zero fallback explicit.
	return model.SourcedSale{SourcedAmount: decimal.Zero, SourcedState: r.jurisdiction}
}

// marketBased sources the full amount to the customer location. It has
// sufficient data only when a customer location is known.
func (r *Resolver) marketBased(tx model.SaleTransaction) (model.SourcedSale, bool) {
	if tx.CustomerLocation == "" {
		return model.SourcedSale{}, false
	}
	amount := decimal.Zero
	if tx.CustomerLocation == r.jurisdiction {
		amount = tx.Amount
	}
	return model.SourcedSale{SourcedAmount: amount, SourcedState: tx.CustomerLocation}, true
}

// costOfPerformance prorates the amount by the jurisdiction's share of
// the per-state payroll breakdown. It has sufficient data only when a
// positive breakdown exists.
func (r *Resolver) costOfPerformance(tx model.SaleTransaction) (model.SourcedSale, bool) {
	total := decimal.Zero
	for _, p := range r.factors.Payroll.ByState {
		total = total.Add(p)
	}
	if !total.IsPositive() {
		return model.SourcedSale{}, false
	}
	share := r.factors.Payroll.ByState[r.jurisdiction].Div(total)
	return model.SourcedSale{
		SourcedAmount: tx.Amount.Mul(share),
		SourcedState:  r.jurisdiction,
	}, true
}

// proRata prorates the amount by the average local share of whichever
// apportionment factors have usable (positive) denominators. With no
// usable factor at all the share is zero. This rung always decides.
func (r *Resolver) proRata(tx model.SaleTransaction) (model.SourcedSale, bool) {
	shares := make([]decimal.Decimal, 0, 3)

	propEverywhere := r.factors.Property.EverywhereValue.Add(r.factors.Property.EverywhereRentAnnual.Mul(scheduley.RentCapitalizationMultiplier))
	if propEverywhere.IsPositive() {
		propLocal := r.factors.Property.LocalValue.Add(r.factors.Property.LocalRentAnnual.Mul(scheduley.RentCapitalizationMultiplier))
		shares = append(shares, propLocal.Div(propEverywhere))
	}
	if r.factors.Payroll.EverywherePayroll.IsPositive() {
		shares = append(shares, r.factors.Payroll.LocalPayroll.Div(r.factors.Payroll.EverywherePayroll))
	}
	if r.factors.Sales.EverywhereSales.IsPositive() {
		shares = append(shares, r.factors.Sales.LocalSales.Div(r.factors.Sales.EverywhereSales))
	}

	share := decimal.Zero
	if len(shares) > 0 {
		sum := decimal.Zero
		for _, s := range shares {
			sum = sum.Add(s)
		}
		share = sum.Div(decimal.NewFromInt(int64(len(shares))))
	}

	return model.SourcedSale{
		SourcedAmount: tx.Amount.Mul(share),
		SourcedState:  r.jurisdiction,
	}, true
}
