// Package export renders a filing breakdown into an XLSX workbook with
// Schedule X, Schedule Y, and summary sheets.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/munitax/internal/format"
	"github.com/sells-group/munitax/internal/model"
)

// Write renders the breakdown workbook to the given path.
func Write(in *model.FilingInput, breakdown *model.FilingBreakdown, path string) error {
	file, err := Workbook(in, breakdown)
	if err != nil {
		return err
	}
	return eris.Wrapf(file.Save(path), "export: save %s", path)
}

// Workbook builds the three-sheet breakdown workbook.
func Workbook(in *model.FilingInput, breakdown *model.FilingBreakdown) (*xlsx.File, error) {
	file := xlsx.NewFile()

	if err := addSummarySheet(file, breakdown); err != nil {
		return nil, err
	}
	if err := addScheduleXSheet(file, in, breakdown); err != nil {
		return nil, err
	}
	if err := addScheduleYSheet(file, breakdown); err != nil {
		return nil, err
	}
	return file, nil
}

func addSummarySheet(file *xlsx.File, b *model.FilingBreakdown) error {
	sheet, err := file.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addRow(sheet, "Filer", b.Filer)
	addRow(sheet, "Period", b.Period)
	addRow(sheet, "Jurisdiction", b.Jurisdiction)
	addRow(sheet, "", "")
	addRow(sheet, "Adjusted municipal income", format.Currency(b.Reconciliation.AdjustedMunicipalIncome))
	addRow(sheet, "Final apportionment", format.Percent(b.Apportionment.FinalPct))
	addRow(sheet, "Jurisdiction taxable income", format.Currency(b.JurisdictionTaxableIncome))

	if len(b.Warnings) > 0 {
		addRow(sheet, "", "")
		addRow(sheet, "Warnings", "")
		for _, w := range b.Warnings {
			addRow(sheet, string(w.Code), w.Message)
		}
	}
	return nil
}

func addScheduleXSheet(file *xlsx.File, in *model.FilingInput, b *model.FilingBreakdown) error {
	sheet, err := file.AddSheet("Schedule X")
	if err != nil {
		return eris.Wrap(err, "export: add schedule x sheet")
	}

	a := in.Income.AddBacks
	d := in.Income.Deductions

	addRow(sheet, "Federal taxable income", format.Currency(in.Income.FederalTaxableIncome))
	addRow(sheet, "", "")
	addRow(sheet, "Add-backs", "")
	lines := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"State and local income taxes", a.StateLocalIncomeTaxes},
		{"Income taxes paid to other municipalities", a.IncomeTaxesOtherMunicipalities},
		{"Depreciation adjustment", a.DepreciationAdjustment},
		{"Meals and entertainment", a.MealsAndEntertainment},
		{"Capital loss in excess of capital gains", a.CapitalLossExcess},
		{"Charitable contributions over 10% limit", a.CharitableContributionExcess},
		{"Related party payments over FMV", a.RelatedPartyExcess},
		{"5% expenses on intangible income", a.ExpensesOnIntangibleIncome},
		{"Guaranteed payments to partners", a.GuaranteedPayments},
		{"Partner retirement plan contributions", a.PartnerRetirementContributions},
		{"Federal net operating loss", a.FederalNetOperatingLoss},
		{"Qualified business income deduction", a.QualifiedBusinessIncomeDeduction},
		{"Domestic production activities", a.DomesticProductionActivities},
		{"REIT dividends paid", a.ReitDividendsPaid},
		{"Pass-through entity losses", a.PassThroughEntityLosses},
		{"Penalties and fines", a.PenaltiesAndFines},
		{"Club dues and memberships", a.ClubDuesAndMemberships},
		{"Political contributions", a.PoliticalContributions},
		{"Officer life insurance premiums", a.OfficerLifeInsurancePremiums},
		{"Other add-backs", a.OtherAddBacks},
	}
	for _, l := range lines {
		addRow(sheet, l.label, format.Currency(l.amount))
	}
	addRow(sheet, "Total add-backs", format.Currency(b.Reconciliation.TotalAddBacks))

	addRow(sheet, "", "")
	addRow(sheet, "Deductions", "")
	dedLines := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Interest income", d.InterestIncome},
		{"Dividends", d.Dividends},
		{"Capital gains", d.CapitalGains},
		{"Intangible royalties", d.IntangibleRoyalties},
		{"Pass-through entity income", d.PassThroughEntityIncome},
		{"NOL carryforward", d.NOLCarryforward},
		{"Other deductions", d.OtherDeductions},
	}
	for _, l := range dedLines {
		addRow(sheet, l.label, format.Currency(l.amount))
	}
	addRow(sheet, "Total deductions", format.Currency(b.Reconciliation.TotalDeductions))

	addRow(sheet, "", "")
	addRow(sheet, "Adjusted municipal income", format.Currency(b.Reconciliation.AdjustedMunicipalIncome))
	return nil
}

func addScheduleYSheet(file *xlsx.File, b *model.FilingBreakdown) error {
	sheet, err := file.AddSheet("Schedule Y")
	if err != nil {
		return eris.Wrap(err, "export: add schedule y sheet")
	}

	addRow(sheet, "Property factor", format.Percent(b.Apportionment.PropertyPct))
	addRow(sheet, "Payroll factor", format.Percent(b.Apportionment.PayrollPct))
	addRow(sheet, "Sales factor", format.Percent(b.Apportionment.SalesPct))
	addRow(sheet, "Final apportionment", format.Percent(b.Apportionment.FinalPct))
	addRow(sheet, "", "")
	addRow(sheet, "Local sales (sourced)", format.Currency(b.Sourcing.LocalSales))
	addRow(sheet, "Everywhere sales (adjusted)", format.Currency(b.Sourcing.EverywhereSales))
	addRow(sheet, "Throwback adjustment", format.Currency(b.Sourcing.ThrowbackAdjustment))
	addRow(sheet, "Throwout adjustment", format.Currency(b.Sourcing.ThrowoutAdjustment))
	return nil
}

func addRow(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().Value = label
	row.AddCell().Value = value
}
