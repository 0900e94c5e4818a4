package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstat-dev/finstat/internal/model"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func assertTxn(t *testing.T, txn model.Transaction, date, desc, value string) {
	t.Helper()
	assert.Equal(t, date, txn.Date)
	assert.Equal(t, desc, txn.Description)
	want, err := decimal.NewFromString(value)
	require.NoError(t, err)
	assert.True(t, want.Equal(txn.Value), "value: want %s, got %s", want, txn.Value)
}

func TestSimpleExtractor_SpecExample(t *testing.T) {
	p := &SimpleExtractor{}
	txns, err := p.Parse("Date;Value;Description\n2023-01-01;-50.00;Groceries")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assertTxn(t, txns[0], "2023-01-01", "Groceries", "-50.00")
	assert.Empty(t, txns[0].Dataset)
	assert.Nil(t, txns[0].Origin)
}

func TestSimpleExtractor_Fixture(t *testing.T) {
	p := &SimpleExtractor{}
	txns, err := p.Parse(readFixture(t, "simple.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assertTxn(t, txns[1], "2023-01-15", "Salary; January", "1200")
	assertTxn(t, txns[2], "2023-02-03", "Coffee", "-12.5")
}

func TestSimpleExtractor_NoHeader(t *testing.T) {
	p := &SimpleExtractor{}
	txns, err := p.Parse("\"2023-01-01\";\"1\";\"a\"\n")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assertTxn(t, txns[0], "2023-01-01", "a", "1")
}

func TestSimpleExtractor_WrongColumnCount(t *testing.T) {
	p := &SimpleExtractor{}
	_, err := p.Parse("Date;Value;Description\n2023-01-01;-50.00\n")
	require.Error(t, err)

	var mie *MalformedInputError
	require.True(t, errors.As(err, &mie))
	assert.Equal(t, "csv-simple", mie.Format)
	assert.Equal(t, 2, mie.Line)
	assert.Contains(t, err.Error(), "wrong format")
}

func TestSimpleExtractor_BadAmount(t *testing.T) {
	p := &SimpleExtractor{}
	_, err := p.Parse("2023-01-01;NOTANUMBER;x\n")
	var mie *MalformedInputError
	require.True(t, errors.As(err, &mie))
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestSimpleExtractor_Empty(t *testing.T) {
	p := &SimpleExtractor{}
	txns, err := p.Parse("Date;Value;Description\n")
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestFioExtractor_V2(t *testing.T) {
	p := &FioExtractor{}
	txns, err := p.Parse(readFixture(t, "fio.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assertTxn(t, txns[0], "2023-01-02", "Albert supermarket", "-1250.50")
	assertTxn(t, txns[1], "2023-01-15", "Výplata", "35000")
	assertTxn(t, txns[2], "2023-03-03", "Netflix", "-89.90")
}

func TestFioExtractor_V1(t *testing.T) {
	p := &FioExtractor{}
	txns, err := p.Parse(readFixture(t, "fio_v1.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assertTxn(t, txns[0], "2022-04-05", "Lékárna", "-300")
	assertTxn(t, txns[1], "2022-04-06", "Vratka", "100")
}

func TestFioExtractor_V2MissingTable(t *testing.T) {
	p := &FioExtractor{}
	_, err := p.Parse("accountId;123\nbankId;2010\n")
	var mie *MalformedInputError
	require.True(t, errors.As(err, &mie))
	assert.Contains(t, err.Error(), "header not found")
}

func TestFioExtractor_V2ShortRow(t *testing.T) {
	p := &FioExtractor{}
	_, err := p.Parse("accountId;123\nID operace;Datum\n1;02.01.2023;-1\n")
	var mie *MalformedInputError
	require.True(t, errors.As(err, &mie))
	assert.Equal(t, 3, mie.Line)
}

func TestMonetaExtractor(t *testing.T) {
	p := &MonetaExtractor{}
	txns, err := p.Parse(readFixture(t, "moneta.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assertTxn(t, txns[0], "2023-02-10", "Nájem garáž", "-450")
	assertTxn(t, txns[1], "2023-02-11", "Obědy", "-120")
	assertTxn(t, txns[2], "2023-02-12", "PŘÍCHOZÍ PLATBA", "2000")
}

func TestEquaExtractor(t *testing.T) {
	p := &EquaExtractor{}
	txns, err := p.Parse(readFixture(t, "equa.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assertTxn(t, txns[0], "2023-05-01", "Spotify", "-59")
	assertTxn(t, txns[1], "2023-05-02", "Platba kartou - Praha - 99/0800", "-200")
}

func TestRaiffeisenExtractor(t *testing.T) {
	p := &RaiffeisenExtractor{}
	txns, err := p.Parse(readFixture(t, "raiffeisen.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assertTxn(t, txns[0], "2023-06-07", "Boty", "-1999")
	assertTxn(t, txns[1], "2023-06-08", "Vedení účtu", "-15")
	assertTxn(t, txns[2], "2023-06-09", "Příchozí", "500")
}

func TestUniCreditExtractor(t *testing.T) {
	p := &UniCreditExtractor{}
	txns, err := p.Parse(readFixture(t, "unicredit.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 2, "reserved payment is skipped")
	assertTxn(t, txns[0], "2024-01-03", "Lidl", "-75.20")
	assertTxn(t, txns[1], "2024-01-04", "Card fee", "-10")
}

func TestUniCreditExtractor_WrongFormat(t *testing.T) {
	p := &UniCreditExtractor{}
	_, err := p.Parse(readFixture(t, "simple.csv"))
	var mie *MalformedInputError
	require.True(t, errors.As(err, &mie))
	assert.Equal(t, 1, mie.Line)
}

func TestSodexoExtractor(t *testing.T) {
	p := &SodexoExtractor{}
	txns, err := p.Parse(readFixture(t, "sodexo.json"))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assertTxn(t, txns[0], "2023-04-03", "Sodexo: Platba - Bistro U Rohu", "-145.5")
	assertTxn(t, txns[1], "2023-04-01", "Sodexo: Dobití", "1200")
}

func TestSodexoExtractor_Array(t *testing.T) {
	p := &SodexoExtractor{}
	txns, err := p.Parse(`[{"Amount": 10, "DateLocalized": "09.08.2023", "TypeLocalized": "X"}]`)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assertTxn(t, txns[0], "2023-08-09", "Sodexo: X", "10")
}

func TestSodexoExtractor_Invalid(t *testing.T) {
	p := &SodexoExtractor{}
	for _, doc := range []string{"", "{", `{"Other": []}`, `[{"DateLocalized": "09.08.2023"}]`} {
		_, err := p.Parse(doc)
		var mie *MalformedInputError
		assert.True(t, errors.As(err, &mie), "doc %q: %v", doc, err)
	}
}

func TestOFXExtractor(t *testing.T) {
	p := &OFXExtractor{}
	txns, err := p.Parse(readFixture(t, "statement.ofx"))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assertTxn(t, txns[0], "2023-01-05", "Hardware store", "-42.17")
	assertTxn(t, txns[1], "2023-01-31", "ACME PAYROLL", "2500")
}

func TestOFXExtractor_SGML(t *testing.T) {
	p := &OFXExtractor{}
	txns, err := p.Parse(readFixture(t, "statement_sgml.ofx"))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assertTxn(t, txns[0], "2023-03-02", "Groceries", "-50")
	assertTxn(t, txns[1], "2023-03-15", "Salary", "1200")
}

func TestOFXExtractor_Invalid(t *testing.T) {
	p := &OFXExtractor{}
	_, err := p.Parse("OFXHEADER:100\nno xml here")
	var mie *MalformedInputError
	require.True(t, errors.As(err, &mie))

	_, err = p.Parse("<OFX><STMTTRN><TRNAMT>1</TRNAMT></STMTTRN></OFX>")
	require.True(t, errors.As(err, &mie))
	assert.Contains(t, err.Error(), "DTPOSTED")
}

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()
	for _, key := range []string{"csv-simple", "csv-fio", "csv-moneta", "csv-equa", "csv-raiffeisen", "csv-unicredit", "json-sodexo", "ofx"} {
		e, err := r.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, key, e.Key())
		assert.NotEmpty(t, e.DisplayName())
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Get("nonexistent")
	var ufe *UnsupportedFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "nonexistent", ufe.Key)
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Get("OFX")
	assert.NoError(t, err)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry(&SimpleExtractor{}, &SimpleExtractor{})
	})
}

func TestRegistry_ByExtension(t *testing.T) {
	r := DefaultRegistry()
	csv := r.ByExtension(".CSV")
	require.Len(t, csv, 6)
	assert.Equal(t, "csv-simple", csv[0].Key())

	ofx := r.ByExtension("ofx")
	require.Len(t, ofx, 1)
	assert.Equal(t, "ofx", ofx[0].Key())

	assert.Empty(t, r.ByExtension("pdf"))
}

func TestRegistry_Keys(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{
		"csv-simple", "csv-fio", "csv-moneta", "csv-equa",
		"csv-raiffeisen", "csv-unicredit", "json-sodexo", "ofx",
	}, r.Keys())
	assert.Len(t, r.All(), 8)
}

func TestRegistry_Detect(t *testing.T) {
	r := DefaultRegistry()

	e, txns, err := r.Detect("export.csv", readFixture(t, "moneta.csv"))
	require.NoError(t, err)
	assert.Equal(t, "csv-moneta", e.Key())
	assert.Len(t, txns, 3)

	e, _, err = r.Detect("statement.OFX", readFixture(t, "statement.ofx"))
	require.NoError(t, err)
	assert.Equal(t, "ofx", e.Key())
}

func TestRegistry_DetectUnsupported(t *testing.T) {
	r := DefaultRegistry()
	_, _, err := r.Detect("statement.pdf", "")
	var ufe *UnsupportedFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "pdf", ufe.Extension)
}

func TestRegistry_DetectAllFail(t *testing.T) {
	r := DefaultRegistry()
	_, _, err := r.Detect("x.json", "not json")
	var mie *MalformedInputError
	assert.True(t, errors.As(err, &mie))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "card.ofx"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("data"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "processed.csv"), 0o755))

	files, err := Scan(dir, DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "bank.csv", files[0].Name)
	assert.Len(t, files[0].Extractors, 6)
	assert.Equal(t, "card.ofx", files[1].Name)
	assert.Equal(t, int64(4), files[1].Size)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"), DefaultRegistry())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	_, err := os.Stat(filepath.Join(dir, "bank.csv"))
	assert.True(t, os.IsNotExist(err), "source should be gone")
	data, err := os.ReadFile(filepath.Join(dir, ProcessedDir, "bank.csv"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	files, err := Scan(dir, DefaultRegistry())
	require.NoError(t, err)
	assert.Empty(t, files, "processed files are not scanned again")
}

func TestMarkProcessed_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ProcessedDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProcessedDir, "bank.csv"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("new"), 0o644))

	err := MarkProcessed(dir, "bank.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrExist))

	data, err := os.ReadFile(filepath.Join(dir, ProcessedDir, "bank.csv"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}
