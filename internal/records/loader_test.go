package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRecordsJSONArray(t *testing.T) {
	path := writeFile(t, "records.json", `[
		{"id": "cafe-1", "name": "Kopi Kita", "rating": 4.5},
		{"id": 42, "name": "Warung 42"}
	]`)

	docs, err := LoadRecords(path, "id")
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "cafe-1", docs[0].ID)
	assert.Equal(t, "Kopi Kita", docs[0].Data["name"])
	assert.Equal(t, 4.5, docs[0].Data["rating"])
	assert.Equal(t, "42", docs[1].ID)
}

func TestLoadRecordsJSONKeyed(t *testing.T) {
	path := writeFile(t, "records.json", `{
		"b-shop": {"name": "B"},
		"a-shop": {"name": "A"}
	}`)

	docs, err := LoadRecords(path, "")
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "a-shop", docs[0].ID)
	assert.Equal(t, "b-shop", docs[1].ID)
}

func TestLoadRecordsCSV(t *testing.T) {
	path := writeFile(t, "records.csv", "slug,name,city\nkopi,Kopi Kita, Palembang \nbakso,Bakso Pak Min\n")

	docs, err := LoadRecords(path, "slug")
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "kopi", docs[0].ID)
	assert.Equal(t, "Palembang", docs[0].Data["city"])
	assert.Equal(t, "", docs[1].Data["city"])
}

func TestLoadRecordsCSVWithByteOrderMark(t *testing.T) {
	path := writeFile(t, "records.csv", "\ufeffid,name\n1,Acme\n")

	docs, err := LoadRecords(path, "id")
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "Acme", docs[0].Data["name"])
	assert.NotContains(t, docs[0].Data, "\ufeffid")

	path = writeFile(t, "quoted.csv", "\ufeff\"id\",\"name\"\n2,Bakso\n")
	docs, err = LoadRecords(path, "id")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2", docs[0].ID)
}

func TestLoadRecordsXLSXWithByteOrderMark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"\ufeffid", "name"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"salon-7", "Salon Tujuh"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	docs, err := LoadRecords(path, "id")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "salon-7", docs[0].ID)
}

func TestLoadRecordsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"id", "name"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"salon-7", "Salon Tujuh"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"gym-2", "Gym Dua"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	docs, err := LoadRecords(path, "id")
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "salon-7", docs[0].ID)
	assert.Equal(t, "Gym Dua", docs[1].Data["name"])
}

func TestLoadRecordsErrors(t *testing.T) {
	tests := map[string]string{
		"missing file": filepath.Join(t.TempDir(), "missing.json"),
		"bad json":     writeFile(t, "bad.json", `[{"id": 1`),
		"no id":        writeFile(t, "noid.json", `[{"name": "x"}]`),
		"empty id":     writeFile(t, "emptyid.csv", "id,name\n,x\n"),
		"unknown ext":  writeFile(t, "records.txt", "id\n1\n"),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			docs, err := LoadRecords(path, "id")
			assert.ErrorIs(t, err, ErrRecordsRead)
			assert.Nil(t, docs)
		})
	}
}

func TestBuildEqualityQuery(t *testing.T) {
	query, args, err := buildEqualityQuery("businesses", "city", "==", "Palembang")
	require.NoError(t, err)
	assert.Contains(t, query, "data -> 'city' = $2::jsonb")
	assert.Equal(t, []interface{}{"businesses", `"Palembang"`}, args)

	_, _, err = buildEqualityQuery("businesses", "city", ">", 1)
	assert.Error(t, err)

	_, _, err = buildEqualityQuery("businesses", "city'; drop table documents; --", "==", 1)
	assert.Error(t, err)
}
