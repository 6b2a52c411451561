package filing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/munitax/internal/model"
)

const yamlDoc = `
filer: Acme Manufacturing LLC
period: "2025"
jurisdiction: OH
income:
  federal_taxable_income: "500000"
  add_backs:
    state_local_income_taxes: "25000"
    meals_and_entertainment: "20000"
factors:
  sales:
    everywhere_sales: "1000000"
elections:
  throwback: THROWOUT
nexus:
  by_state:
    OH: true
transactions:
  - amount: "100000"
    sale_type: TANGIBLE_GOODS
    origin_state: OH
    destination_state: MT
`

const jsonDoc = `{
  "filer": "Acme Manufacturing LLC",
  "period": "2025",
  "jurisdiction": "OH",
  "income": {"federal_taxable_income": "500000"},
  "factors": {"sales": {"everywhere_sales": "1000000"}},
  "elections": {"throwback": "THROWOUT"},
  "nexus": {"by_state": {"OH": true}}
}`

func TestDecode_YAML(t *testing.T) {
	t.Parallel()

	in, err := Decode([]byte(yamlDoc))
	require.NoError(t, err)

	assert.Equal(t, "Acme Manufacturing LLC", in.Filer)
	assert.Equal(t, "2025", in.Period)
	assert.Equal(t, "OH", in.Jurisdiction)
	assert.Equal(t, "500000", in.Income.FederalTaxableIncome.String())
	assert.Equal(t, "25000", in.Income.AddBacks.StateLocalIncomeTaxes.String())
	assert.Equal(t, "1000000", in.Factors.Sales.EverywhereSales.String())
	require.Len(t, in.Transactions, 1)
	assert.Equal(t, model.SaleTangibleGoods, in.Transactions[0].SaleType)
	assert.True(t, in.Nexus.HasNexus("OH"))
}

func TestDecode_JSON(t *testing.T) {
	t.Parallel()

	in, err := Decode([]byte(jsonDoc))
	require.NoError(t, err)
	assert.Equal(t, "Acme Manufacturing LLC", in.Filer)
	assert.Equal(t, "500000", in.Income.FederalTaxableIncome.String())
	assert.Equal(t, model.Throwout, in.Elections.Throwback)
}

func TestDecode_ElectionDefaults(t *testing.T) {
	t.Parallel()

	in, err := Decode([]byte(yamlDoc))
	require.NoError(t, err)

	// only throwback is set in the document; the rest default
	assert.Equal(t, model.Throwout, in.Elections.Throwback)
	assert.Equal(t, model.Finnigan, in.Elections.Sourcing)
	assert.Equal(t, model.MarketBased, in.Elections.ServiceSourcing)
	assert.Equal(t, model.ThreeFactorEqualWeighted, in.Elections.Formula)
}

func TestDecode_RejectsBadElection(t *testing.T) {
	t.Parallel()

	doc := `
elections:
  sourcing: SPLIT_THE_DIFFERENCE
`
	_, err := Decode([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sourcing method")
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("{not json"))
	require.Error(t, err)

	_, err = Decode([]byte("\t- : bad yaml : -"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "filing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	in, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Manufacturing LLC", in.Filer)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDigest_StableAndInputSensitive(t *testing.T) {
	t.Parallel()

	a, err := Decode([]byte(yamlDoc))
	require.NoError(t, err)
	b, err := Decode([]byte(yamlDoc))
	require.NoError(t, err)

	da, err := Digest(a)
	require.NoError(t, err)
	db, err := Digest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da, 64)

	// any change to the input changes the digest
	b.Income.FederalTaxableIncome = b.Income.FederalTaxableIncome.Add(b.Income.FederalTaxableIncome)
	db2, err := Digest(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db2)
}

func TestDigest_EquivalentYAMLAndJSON(t *testing.T) {
	t.Parallel()

	// the same logical document digests identically regardless of the
	// serialization it arrived in
	y, err := Decode([]byte(`
filer: Acme Manufacturing LLC
period: "2025"
jurisdiction: OH
income:
  federal_taxable_income: "500000"
factors:
  sales:
    everywhere_sales: "1000000"
nexus:
  by_state:
    OH: true
`))
	require.NoError(t, err)

	j, err := Decode([]byte(`{
  "filer": "Acme Manufacturing LLC",
  "period": "2025",
  "jurisdiction": "OH",
  "income": {"federal_taxable_income": "500000"},
  "factors": {"sales": {"everywhere_sales": "1000000"}},
  "nexus": {"by_state": {"OH": true}}
}`))
	require.NoError(t, err)

	dy, err := Digest(y)
	require.NoError(t, err)
	dj, err := Digest(j)
	require.NoError(t, err)
	assert.Equal(t, dy, dj)
}

func TestIsDigest(t *testing.T) {
	t.Parallel()

	in, err := Decode([]byte(`{"filer": "Acme Manufacturing LLC"}`))
	require.NoError(t, err)
	d, err := Digest(in)
	require.NoError(t, err)
	assert.True(t, IsDigest(d))

	tests := []struct {
		name string
		key  string
	}{
		{name: "run id", key: "3b9e4a6e-6f7d-4c1e-9b6a-2f1e8d0c5a4b"},
		{name: "too short", key: d[:63]},
		{name: "uppercase hex", key: strings.ToUpper(d)},
		{name: "non-hex character", key: d[:63] + "g"},
		{name: "empty", key: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, IsDigest(tt.key))
		})
	}
}
