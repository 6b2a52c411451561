package model

import "github.com/shopspring/decimal"

// FilingInput is the complete input document for one filing period:
// Schedule X figures, Schedule Y factor inputs, elections, the nexus
// snapshot, the affiliated group, and the itemized sale transactions.
type FilingInput struct {
	Filer        string               `json:"filer,omitempty" yaml:"filer,omitempty"`
	Period       string               `json:"period,omitempty" yaml:"period,omitempty"`
	Jurisdiction string               `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`
	Income       ReconciliationInput  `json:"income" yaml:"income"`
	Factors      ApportionmentFactors `json:"factors" yaml:"factors"`
	Elections    Elections            `json:"elections" yaml:"elections"`
	Nexus        NexusStatus          `json:"nexus" yaml:"nexus"`
	Group        []GroupMember        `json:"group,omitempty" yaml:"group,omitempty"`
	Transactions []SaleTransaction    `json:"transactions,omitempty" yaml:"transactions,omitempty"`
}

// SourcingResult aggregates the per-transaction sourcing decisions into
// the adjusted sales-factor inputs.
type SourcingResult struct {
	Sales               []SourcedSale   `json:"sales" yaml:"sales"`
	LocalSales          decimal.Decimal `json:"local_sales" yaml:"local_sales"`
	EverywhereSales     decimal.Decimal `json:"everywhere_sales" yaml:"everywhere_sales"`
	ThrowbackAdjustment decimal.Decimal `json:"throwback_adjustment" yaml:"throwback_adjustment"`
	ThrowoutAdjustment  decimal.Decimal `json:"throwout_adjustment" yaml:"throwout_adjustment"`
}

// ApportionmentResult holds the factor percentages and their weighted
// combination.
type ApportionmentResult struct {
	PropertyPct decimal.Decimal `json:"property_pct" yaml:"property_pct"`
	PayrollPct  decimal.Decimal `json:"payroll_pct" yaml:"payroll_pct"`
	SalesPct    decimal.Decimal `json:"sales_pct" yaml:"sales_pct"`
	FinalPct    decimal.Decimal `json:"final_pct" yaml:"final_pct"`
}

// FilingBreakdown is the engine's complete output for one filing period.
// Identical inputs always produce a byte-identical breakdown.
type FilingBreakdown struct {
	Filer                     string               `json:"filer,omitempty" yaml:"filer,omitempty"`
	Period                    string               `json:"period,omitempty" yaml:"period,omitempty"`
	Jurisdiction              string               `json:"jurisdiction" yaml:"jurisdiction"`
	Reconciliation            ReconciliationResult `json:"reconciliation" yaml:"reconciliation"`
	Sourcing                  SourcingResult       `json:"sourcing" yaml:"sourcing"`
	Apportionment             ApportionmentResult  `json:"apportionment" yaml:"apportionment"`
	JurisdictionTaxableIncome decimal.Decimal      `json:"jurisdiction_taxable_income" yaml:"jurisdiction_taxable_income"`
	Warnings                  []Warning            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
