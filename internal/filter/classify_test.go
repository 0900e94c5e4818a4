package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstat-dev/finstat/internal/model"
)

func loadTestFilters(t *testing.T) *Set {
	t.Helper()
	s, err := LoadJSON([]byte(`[
		{"name":"<no filter>","hideInTable":true},
		{"name":"Food/Groceries","query":{"description":{"$or":["lidl","albert"]}}},
		{"name":"Food/Restaurants","query":"bistro"},
		{"name":"Income","query":{"value":{"$gt":0}}},
		{"name":"Expenses","negFilter":"Income","hideInTable":true}
	]`))
	require.NoError(t, err)
	return s
}

func TestGroupByFilters(t *testing.T) {
	s := loadTestFilters(t)
	txns := []model.Transaction{
		txn("2023-01-01", "LIDL Praha", "-300", "fio"),
		txn("2023-01-02", "Bistro U Rohu", "-150", "fio"),
		txn("2023-01-03", "Salary", "30000", "fio"),
		txn("2023-01-04", "Albert", "-200", "fio"),
		txn("2023-01-05", "Rent", "-12000", "fio"),
		txn("2023-01-06", "Refund from Lidl", "50", "fio"),
	}

	c := GroupByFilters(txns, s, "Others")

	var names []string
	for _, g := range c.Groups() {
		names = append(names, g.Filter.Name)
	}
	assert.Equal(t, []string{
		"<no filter>", "Food", "Food/Groceries", "Food/Restaurants", "Income", "Expenses", "Others",
	}, names, "every filter is pre-populated, others last")

	groceries, ok := c.Get("Food/Groceries")
	require.True(t, ok)
	require.Len(t, groceries.Transactions, 3, "first match wins over Income")
	assert.True(t, decimal.NewFromInt(-450).Equal(groceries.Total()))

	food, _ := c.Get("Food")
	assert.Empty(t, food.Transactions, "synthetic filters are not classification targets")

	hidden, _ := c.Get("Expenses")
	assert.Empty(t, hidden.Transactions, "hidden filters are not classification targets")

	income, _ := c.Get("Income")
	require.Len(t, income.Transactions, 1)
	assert.Equal(t, "Salary", income.Transactions[0].Description)

	others, _ := c.Get("Others")
	assert.True(t, others.Others)
	require.Len(t, others.Transactions, 1)
	assert.Equal(t, "Rent", others.Transactions[0].Description)
}

func TestGroupByFilters_EveryTransactionOnce(t *testing.T) {
	s := loadTestFilters(t)
	txns := []model.Transaction{
		txn("2023-01-01", "lidl", "-1", ""),
		txn("2023-01-01", "x", "-1", ""),
		txn("2023-01-01", "y", "5", ""),
	}
	c := GroupByFilters(txns, s, "Others")

	total := 0
	for _, g := range c.Groups() {
		total += len(g.Transactions)
	}
	assert.Equal(t, len(txns), total)
}

func TestGroupByFilters_OthersLabelCollision(t *testing.T) {
	s, err := LoadJSON([]byte(`[{"name":"Misc","query":"misc"},{"name":"Rent","query":"rent"}]`))
	require.NoError(t, err)

	c := GroupByFilters([]model.Transaction{
		txn("2023-01-01", "misc", "-1", ""),
		txn("2023-01-01", "other", "-1", ""),
	}, s, "Misc")

	groups := c.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Misc", groups[0].Filter.Name)
	assert.True(t, groups[0].Others)
	assert.Len(t, groups[0].Transactions, 2)
}

func TestGroupByFilters_NilSet(t *testing.T) {
	c := GroupByFilters([]model.Transaction{txn("2023-01-01", "x", "1", "")}, nil, "Others")
	groups := c.Groups()
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Transactions, 1)
}

func TestSearchFilter_Text(t *testing.T) {
	f := SearchFilter("  lidl ")
	assert.Equal(t, `"lidl"`, f.Name)
	assert.True(t, f.Matches(txn("2023-01-01", "LIDL Praha", "-1", "")))
	assert.False(t, f.Matches(txn("2023-01-01", "Albert", "-1", "")))
}

func TestSearchFilter_Query(t *testing.T) {
	f := SearchFilter(`{"value": {"$lt": -100}}`)
	assert.True(t, f.Matches(txn("2023-01-01", "x", "-200", "")))
	assert.False(t, f.Matches(txn("2023-01-01", "x", "-50", "")))
	assert.NotNil(t, f.Query)
}

func TestSearchFilter_InvalidQueryFallsBack(t *testing.T) {
	text := `{"amount": 5}`
	f := SearchFilter(text)
	assert.Nil(t, f.Query)
	assert.True(t, f.Matches(txn("2023-01-01", `note {"amount": 5}`, "-1", "")))
	assert.False(t, f.Matches(txn("2023-01-01", "x", "5", "")))

	f = SearchFilter(`{not json}`)
	assert.True(t, f.Matches(txn("2023-01-01", "{NOT JSON}", "-1", "")))
}

func TestYearFilter(t *testing.T) {
	f := YearFilter("2023")
	assert.Equal(t, "2023", f.Name)
	assert.True(t, f.Matches(txn("2023-06-01", "x", "1", "")))
	assert.False(t, f.Matches(txn("2022-06-01", "x", "1", "")))
}

func TestConcat(t *testing.T) {
	year := YearFilter("2023")
	search := SearchFilter("lidl")
	f := Concat(year, search)

	assert.Equal(t, `2023 & "lidl"`, f.Name)
	assert.True(t, f.Matches(txn("2023-06-01", "Lidl", "-1", "")))
	assert.False(t, f.Matches(txn("2022-06-01", "Lidl", "-1", "")))
	assert.False(t, f.Matches(txn("2023-06-01", "Albert", "-1", "")))

	assert.Equal(t, "2023", year.Name, "inputs are not modified")
	assert.Equal(t, `"lidl"`, search.Name)
}

func TestConcat_NilPredicateMatchesAll(t *testing.T) {
	noFilter, _ := Default().Get(NoFilterName)
	f := Concat(YearFilter("2023"), noFilter)
	assert.Equal(t, "2023 & <no filter>", f.Name)
	assert.True(t, f.Matches(txn("2023-06-01", "anything", "1", "")))

	f = Concat(nil, YearFilter("2023"))
	assert.Equal(t, "2023", f.Name)
	assert.True(t, f.Matches(txn("2023-06-01", "anything", "1", "")))
}
