// Package sourcing resolves where each reported sale is sourced for the
// sales factor: Finnigan/Joyce treatment of affiliated group sales,
// throwback/throwout of sales shipped to no-nexus states, and the
// ordered service-revenue sourcing cascade.
package sourcing

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/munitax/internal/model"
)

// Resolver holds the immutable per-filing snapshot the sourcing rules
// read: jurisdiction, elections, nexus, factor inputs, and the
// affiliated group. A Resolver is safe for concurrent use.
type Resolver struct {
	jurisdiction string
	elections    model.Elections
	nexus        model.NexusStatus
	factors      model.ApportionmentFactors
	group        []model.GroupMember
}

// NewResolver validates the elections and captures the snapshot.
// Malformed elections are rejected here, before any calculation begins.
func NewResolver(jurisdiction string, elections model.Elections, nexus model.NexusStatus, factors model.ApportionmentFactors, group []model.GroupMember) (*Resolver, error) {
	if jurisdiction == "" {
		return nil, eris.New("sourcing: jurisdiction is required")
	}
	if err := elections.Validate(); err != nil {
		return nil, eris.Wrap(err, "sourcing: invalid elections")
	}
	return &Resolver{
		jurisdiction: jurisdiction,
		elections:    elections,
		nexus:        nexus,
		factors:      factors,
		group:        group,
	}, nil
}

// GroupSalesDenominator builds the everywhere-sales denominator for an
// affiliated group. Joyce excludes members lacking jurisdiction nexus
// from the denominator entirely; Finnigan includes every member's sales
// regardless of nexus. Computed once per group, not per transaction.
func GroupSalesDenominator(method model.SourcingMethod, members []model.GroupMember) (decimal.Decimal, error) {
	total := decimal.Zero
	switch method {
	case model.Finnigan:
		for _, m := range members {
			total = total.Add(m.Sales)
		}
	case model.Joyce:
		for _, m := range members {
			if m.HasNexus {
				total = total.Add(m.Sales)
			}
		}
	default:
		return decimal.Zero, eris.Errorf("sourcing: unknown sourcing method %q", method)
	}
	return total, nil
}

// Resolve runs every transaction through the sourcing rules and
// aggregates the adjusted sales-factor inputs. When no transactions are
// reported, the reported local sales plus any manually reported
// throwback adjustment carry through unchanged.
func (r *Resolver) Resolve(txs []model.SaleTransaction) (model.SourcingResult, []model.Warning, error) {
	var warnings []model.Warning

	everywhere := r.factors.Sales.EverywhereSales
	if len(r.group) > 0 {
		d, err := GroupSalesDenominator(r.elections.Sourcing, r.group)
		if err != nil {
			return model.SourcingResult{}, nil, err
		}
		everywhere = d
	}

	if len(txs) == 0 {
		return model.SourcingResult{
			Sales:               []model.SourcedSale{},
			LocalSales:          r.factors.Sales.LocalSales.Add(r.factors.Sales.ThrowbackAdjustment).Round(2),
			EverywhereSales:     everywhere.Round(2),
			ThrowbackAdjustment: r.factors.Sales.ThrowbackAdjustment.Round(2),
			ThrowoutAdjustment:  decimal.Zero,
		}, warnings, nil
	}

	sales := make([]model.SourcedSale, 0, len(txs))
	local := decimal.Zero
	throwback := decimal.Zero
	throwout := decimal.Zero
	nowhere := decimal.Zero

	for _, tx := range txs {
		if _, ok := model.ParseSaleType(string(tx.SaleType)); !ok {
			warnings = append(warnings, model.Warning{
				Code:    model.WarnUnknownSaleType,
				Field:   "transactions",
				Message: "unknown sale type " + string(tx.SaleType) + ", treated as OTHER",
			})
		}

		var sourced model.SourcedSale
		if tx.SaleType == model.SaleServices {
			sourced = r.resolveService(tx)
		} else {
			sourced = r.resolveDestination(tx)
			switch {
			case sourced.ThrowbackApplied:
				throwback = throwback.Add(tx.Amount)
			case r.thrownOut(tx):
				throwout = throwout.Add(tx.Amount)
				everywhere = everywhere.Sub(tx.Amount)
			case r.nowhereIncome(tx):
				nowhere = nowhere.Add(tx.Amount)
			}
		}

		sourced.SourcedAmount = sourced.SourcedAmount.Round(2)
		sales = append(sales, sourced)
		if sourced.SourcedState == r.jurisdiction {
			local = local.Add(sourced.SourcedAmount)
		}
	}

	if nowhere.IsPositive() {
		warnings = append(warnings, model.Warning{
			Code:    model.WarnNowhereIncomeCreated,
			Field:   "sales",
			Message: "sales of " + nowhere.Round(2).String() + " to no-nexus states remain in the denominator under the NONE election",
		})
	}

	return model.SourcingResult{
		Sales:               sales,
		LocalSales:          local.Round(2),
		EverywhereSales:     everywhere.Round(2),
		ThrowbackAdjustment: throwback.Round(2),
		ThrowoutAdjustment:  throwout.Round(2),
	}, warnings, nil
}

// resolveDestination sources a non-service sale to its destination
// state, applying the throwback election when the destination lacks
// nexus. Sales destined to nexus states are never throwback-adjusted,
// whatever the election.
func (r *Resolver) resolveDestination(tx model.SaleTransaction) model.SourcedSale {
	if tx.DestinationState == r.jurisdiction {
		return model.SourcedSale{SourcedAmount: tx.Amount, SourcedState: r.jurisdiction}
	}
	if r.throwbackEligible(tx) && r.elections.Throwback == model.Throwback {
		// Thrown back to the origin jurisdiction: full amount in the
		// numerator, denominator unchanged.
		return model.SourcedSale{SourcedAmount: tx.Amount, SourcedState: r.jurisdiction, ThrowbackApplied: true}
	}
	return model.SourcedSale{SourcedAmount: decimal.Zero, SourcedState: tx.DestinationState}
}

// throwbackEligible reports whether a sale is exposed to the throwback
// election: shipped from the jurisdiction into a state where the filer
// lacks nexus.
func (r *Resolver) throwbackEligible(tx model.SaleTransaction) bool {
	return tx.OriginState == r.jurisdiction &&
		tx.DestinationState != r.jurisdiction &&
		!r.nexus.HasNexus(tx.DestinationState)
}

func (r *Resolver) thrownOut(tx model.SaleTransaction) bool {
	return r.throwbackEligible(tx) && r.elections.Throwback == model.Throwout
}

func (r *Resolver) nowhereIncome(tx model.SaleTransaction) bool {
	return r.throwbackEligible(tx) && r.elections.Throwback == model.NoThrowback
}
