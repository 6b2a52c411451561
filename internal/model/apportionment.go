package model

import "github.com/shopspring/decimal"

// SaleType categorizes a reported sale for sourcing purposes.
type SaleType string

// Sale types.
const (
	SaleTangibleGoods SaleType = "TANGIBLE_GOODS"
	SaleServices      SaleType = "SERVICES"
	SaleRentalIncome  SaleType = "RENTAL_INCOME"
	SaleInterest      SaleType = "INTEREST"
	SaleRoyalties     SaleType = "ROYALTIES"
	SaleOther         SaleType = "OTHER"
)

// ParseSaleType validates a raw sale type string.
func ParseSaleType(s string) (SaleType, bool) {
	switch SaleType(s) {
	case SaleTangibleGoods, SaleServices, SaleRentalIncome, SaleInterest, SaleRoyalties, SaleOther:
		return SaleType(s), true
	}
	return "", false
}

// SaleTransaction is one reported sale. Transactions are immutable
// inputs: the resolver reads them and emits a SourcedSale per
// transaction, it never writes back.
type SaleTransaction struct {
	Amount           decimal.Decimal `json:"amount" yaml:"amount"`
	SaleType         SaleType        `json:"sale_type" yaml:"sale_type"`
	OriginState      string          `json:"origin_state" yaml:"origin_state"`
	DestinationState string          `json:"destination_state" yaml:"destination_state"`
	CustomerLocation string          `json:"customer_location,omitempty" yaml:"customer_location,omitempty"`
}

// SourcedSale is the resolver's terminal output for one transaction.
type SourcedSale struct {
	SourcedAmount    decimal.Decimal `json:"sourced_amount" yaml:"sourced_amount"`
	SourcedState     string          `json:"sourced_state" yaml:"sourced_state"`
	ThrowbackApplied bool            `json:"throwback_applied" yaml:"throwback_applied"`
}

// PropertyFactor holds owned property values plus annual rents, which
// are capitalized at eight times before the ratio is taken.
type PropertyFactor struct {
	LocalValue           decimal.Decimal `json:"local_value" yaml:"local_value"`
	EverywhereValue      decimal.Decimal `json:"everywhere_value" yaml:"everywhere_value"`
	LocalRentAnnual      decimal.Decimal `json:"local_rent_annual" yaml:"local_rent_annual"`
	EverywhereRentAnnual decimal.Decimal `json:"everywhere_rent_annual" yaml:"everywhere_rent_annual"`
}

// PayrollFactor holds jurisdiction and everywhere payroll. ByState is
// the optional per-state breakdown consumed by the cost-of-performance
// sourcing step; an empty map means no breakdown is available.
type PayrollFactor struct {
	LocalPayroll      decimal.Decimal            `json:"local_payroll" yaml:"local_payroll"`
	EverywherePayroll decimal.Decimal            `json:"everywhere_payroll" yaml:"everywhere_payroll"`
	ByState           map[string]decimal.Decimal `json:"by_state,omitempty" yaml:"by_state,omitempty"`
}

// SalesFactor holds the sales ratio inputs. LocalSales and
// EverywhereSales are the figures as reported; the resolver produces the
// throwback-adjusted pair actually used for the ratio. Transactions
// embedded here are sourced together with the filing's top-level
// transaction list.
type SalesFactor struct {
	LocalSales          decimal.Decimal   `json:"local_sales" yaml:"local_sales"`
	EverywhereSales     decimal.Decimal   `json:"everywhere_sales" yaml:"everywhere_sales"`
	ThrowbackAdjustment decimal.Decimal   `json:"throwback_adjustment" yaml:"throwback_adjustment"`
	Transactions        []SaleTransaction `json:"transactions,omitempty" yaml:"transactions,omitempty"`
}

// ApportionmentFactors bundles the three factor inputs for one filing.
type ApportionmentFactors struct {
	Property PropertyFactor `json:"property" yaml:"property"`
	Payroll  PayrollFactor  `json:"payroll" yaml:"payroll"`
	Sales    SalesFactor    `json:"sales" yaml:"sales"`
}

// GroupMember is one entity of an affiliated group, carried only for the
// Finnigan/Joyce everywhere-denominator decision.
type GroupMember struct {
	Name     string          `json:"name" yaml:"name"`
	HasNexus bool            `json:"has_nexus" yaml:"has_nexus"`
	Sales    decimal.Decimal `json:"sales" yaml:"sales"`
}
