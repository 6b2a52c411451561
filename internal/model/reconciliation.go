// Package model defines the data types shared across the reconciliation
// and apportionment calculators. All money and percentage values are
// shopspring decimals; zero values mean "not reported" and contribute
// zero to every total.
package model

import "github.com/shopspring/decimal"

// AddBacks holds the Schedule X adjustments that increase federal taxable
// income for municipal purposes. Every field participates in the total;
// absent fields are zero.
type AddBacks struct {
	StateLocalIncomeTaxes            decimal.Decimal `json:"state_local_income_taxes" yaml:"state_local_income_taxes"`
	IncomeTaxesOtherMunicipalities   decimal.Decimal `json:"income_taxes_other_municipalities" yaml:"income_taxes_other_municipalities"`
	DepreciationAdjustment           decimal.Decimal `json:"depreciation_adjustment" yaml:"depreciation_adjustment"`
	MealsAndEntertainment            decimal.Decimal `json:"meals_and_entertainment" yaml:"meals_and_entertainment"`
	CapitalLossExcess                decimal.Decimal `json:"capital_loss_excess" yaml:"capital_loss_excess"`
	CharitableContributionExcess     decimal.Decimal `json:"charitable_contribution_excess" yaml:"charitable_contribution_excess"`
	RelatedPartyExcess               decimal.Decimal `json:"related_party_excess" yaml:"related_party_excess"`
	ExpensesOnIntangibleIncome       decimal.Decimal `json:"expenses_on_intangible_income" yaml:"expenses_on_intangible_income"`
	GuaranteedPayments               decimal.Decimal `json:"guaranteed_payments" yaml:"guaranteed_payments"`
	PartnerRetirementContributions   decimal.Decimal `json:"partner_retirement_contributions" yaml:"partner_retirement_contributions"`
	FederalNetOperatingLoss          decimal.Decimal `json:"federal_net_operating_loss" yaml:"federal_net_operating_loss"`
	QualifiedBusinessIncomeDeduction decimal.Decimal `json:"qualified_business_income_deduction" yaml:"qualified_business_income_deduction"`
	DomesticProductionActivities     decimal.Decimal `json:"domestic_production_activities" yaml:"domestic_production_activities"`
	ReitDividendsPaid                decimal.Decimal `json:"reit_dividends_paid" yaml:"reit_dividends_paid"`
	PassThroughEntityLosses          decimal.Decimal `json:"pass_through_entity_losses" yaml:"pass_through_entity_losses"`
	PenaltiesAndFines                decimal.Decimal `json:"penalties_and_fines" yaml:"penalties_and_fines"`
	ClubDuesAndMemberships           decimal.Decimal `json:"club_dues_and_memberships" yaml:"club_dues_and_memberships"`
	PoliticalContributions           decimal.Decimal `json:"political_contributions" yaml:"political_contributions"`
	OfficerLifeInsurancePremiums     decimal.Decimal `json:"officer_life_insurance_premiums" yaml:"officer_life_insurance_premiums"`
	OtherAddBacks                    decimal.Decimal `json:"other_add_backs" yaml:"other_add_backs"`

	// OtherAddBacksDescription is required whenever OtherAddBacks is
	// non-zero; a missing description is a validation warning, not a
	// computation failure.
	OtherAddBacksDescription string `json:"other_add_backs_description,omitempty" yaml:"other_add_backs_description,omitempty"`
}

// Deductions holds the Schedule X adjustments that decrease federal
// taxable income for municipal purposes (income taxed federally but
// exempt locally).
type Deductions struct {
	InterestIncome          decimal.Decimal `json:"interest_income" yaml:"interest_income"`
	Dividends               decimal.Decimal `json:"dividends" yaml:"dividends"`
	CapitalGains            decimal.Decimal `json:"capital_gains" yaml:"capital_gains"`
	IntangibleRoyalties     decimal.Decimal `json:"intangible_royalties" yaml:"intangible_royalties"`
	PassThroughEntityIncome decimal.Decimal `json:"pass_through_entity_income" yaml:"pass_through_entity_income"`
	NOLCarryforward         decimal.Decimal `json:"nol_carryforward" yaml:"nol_carryforward"`
	OtherDeductions         decimal.Decimal `json:"other_deductions" yaml:"other_deductions"`

	// OtherDeductionsDescription is required whenever OtherDeductions is
	// non-zero.
	OtherDeductionsDescription string `json:"other_deductions_description,omitempty" yaml:"other_deductions_description,omitempty"`
}

// ReconciliationInput is the Schedule X input: the federal starting point
// plus itemized adjustments.
type ReconciliationInput struct {
	FederalTaxableIncome decimal.Decimal `json:"federal_taxable_income" yaml:"federal_taxable_income"`
	AddBacks             AddBacks        `json:"add_backs" yaml:"add_backs"`
	Deductions           Deductions      `json:"deductions" yaml:"deductions"`
}

// VarianceCheck reports whether the adjusted income diverges from the
// federal figure by more than the configured threshold. A zero federal
// income reports no variance by definition.
type VarianceCheck struct {
	HasVariance bool            `json:"has_variance" yaml:"has_variance"`
	VariancePct decimal.Decimal `json:"variance_pct" yaml:"variance_pct"`
}

// ReconciliationResult is derived entirely from a ReconciliationInput;
// it is recomputed from scratch on every change, never patched.
type ReconciliationResult struct {
	TotalAddBacks           decimal.Decimal `json:"total_add_backs" yaml:"total_add_backs"`
	TotalDeductions         decimal.Decimal `json:"total_deductions" yaml:"total_deductions"`
	AdjustedMunicipalIncome decimal.Decimal `json:"adjusted_municipal_income" yaml:"adjusted_municipal_income"`
	Variance                VarianceCheck   `json:"variance" yaml:"variance"`
}
