package model

import (
	"github.com/rotisserie/eris"
)

// SourcingMethod selects the Finnigan or Joyce convention for building an
// affiliated group's everywhere-sales denominator.
type SourcingMethod string

// Sourcing method elections.
const (
	Finnigan SourcingMethod = "FINNIGAN"
	Joyce    SourcingMethod = "JOYCE"
)

// ThrowbackMethod selects how sales destined to no-nexus states are
// treated in the sales factor.
type ThrowbackMethod string

// Throwback elections.
const (
	Throwback   ThrowbackMethod = "THROWBACK"
	Throwout    ThrowbackMethod = "THROWOUT"
	NoThrowback ThrowbackMethod = "NONE"
)

// ServiceSourcingMethod is the elected starting point of the service
// revenue sourcing cascade.
type ServiceSourcingMethod string

// Service sourcing elections.
const (
	MarketBased       ServiceSourcingMethod = "MARKET_BASED"
	CostOfPerformance ServiceSourcingMethod = "COST_OF_PERFORMANCE"
	ProRata           ServiceSourcingMethod = "PRO_RATA"
)

// ApportionmentFormula selects how the three factor percentages combine
// into the final jurisdiction percentage.
type ApportionmentFormula string

// Apportionment formula elections.
const (
	ThreeFactorEqualWeighted      ApportionmentFormula = "THREE_FACTOR_EQUAL_WEIGHTED"
	FourFactorDoubleWeightedSales ApportionmentFormula = "FOUR_FACTOR_DOUBLE_WEIGHTED_SALES"
	SingleSalesFactor             ApportionmentFormula = "SINGLE_SALES_FACTOR"
)

// Elections is the per-filing configuration read by every calculator.
// It is set once before computation and never mutated mid-calculation.
type Elections struct {
	Sourcing        SourcingMethod        `json:"sourcing" yaml:"sourcing"`
	Throwback       ThrowbackMethod       `json:"throwback" yaml:"throwback"`
	ServiceSourcing ServiceSourcingMethod `json:"service_sourcing" yaml:"service_sourcing"`
	Formula         ApportionmentFormula  `json:"formula" yaml:"formula"`
}

// ParseSourcingMethod validates a raw election string. Malformed values
// are rejected before any calculation begins.
func ParseSourcingMethod(s string) (SourcingMethod, error) {
	switch SourcingMethod(s) {
	case Finnigan, Joyce:
		return SourcingMethod(s), nil
	}
	return "", eris.Errorf("model: unknown sourcing method %q", s)
}

// ParseThrowbackMethod validates a raw election string.
func ParseThrowbackMethod(s string) (ThrowbackMethod, error) {
	switch ThrowbackMethod(s) {
	case Throwback, Throwout, NoThrowback:
		return ThrowbackMethod(s), nil
	}
	return "", eris.Errorf("model: unknown throwback method %q", s)
}

// ParseServiceSourcingMethod validates a raw election string.
func ParseServiceSourcingMethod(s string) (ServiceSourcingMethod, error) {
	switch ServiceSourcingMethod(s) {
	case MarketBased, CostOfPerformance, ProRata:
		return ServiceSourcingMethod(s), nil
	}
	return "", eris.Errorf("model: unknown service sourcing method %q", s)
}

// ParseApportionmentFormula validates a raw election string.
func ParseApportionmentFormula(s string) (ApportionmentFormula, error) {
	switch ApportionmentFormula(s) {
	case ThreeFactorEqualWeighted, FourFactorDoubleWeightedSales, SingleSalesFactor:
		return ApportionmentFormula(s), nil
	}
	return "", eris.Errorf("model: unknown apportionment formula %q", s)
}

// Validate checks every election for a well-formed value. Computation
// must not start on a failing Elections.
func (e Elections) Validate() error {
	if _, err := ParseSourcingMethod(string(e.Sourcing)); err != nil {
		return err
	}
	if _, err := ParseThrowbackMethod(string(e.Throwback)); err != nil {
		return err
	}
	if _, err := ParseServiceSourcingMethod(string(e.ServiceSourcing)); err != nil {
		return err
	}
	if _, err := ParseApportionmentFormula(string(e.Formula)); err != nil {
		return err
	}
	return nil
}

// DefaultElections returns the conservative defaults applied when a
// filing document leaves an election blank.
func DefaultElections() Elections {
	return Elections{
		Sourcing:        Finnigan,
		Throwback:       Throwback,
		ServiceSourcing: MarketBased,
		Formula:         ThreeFactorEqualWeighted,
	}
}
