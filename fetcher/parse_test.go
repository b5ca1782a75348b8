package fetcher

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"compensation-dashboard/apperr"
)

const blsCSV = "OCC_CODE,OCC_TITLE,O_GROUP,AREA_TITLE,A_MEAN,H_MEAN\n" +
	"15-1252,Software Developers,detailed,U.S.,\"132,930\",63.91\n" +
	"29-1141,Registered Nurses,detailed,U.S.,\"94,480\",45.42\n"

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %q: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("zip write %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func buildXLSX(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseCSV(t *testing.T) {
	table, err := Parse([]byte(blsCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows: got %d, want 2", table.Len())
	}
	col := table.Index("occ_title")
	if col < 0 {
		t.Fatal("OCC_TITLE column not found case-insensitively")
	}
	if got := table.Cell(1, col); got != "Registered Nurses" {
		t.Errorf("Cell(1, OCC_TITLE) = %q; want %q", got, "Registered Nurses")
	}
	if got := table.Cell(0, table.Index("A_MEAN")); got != "132,930" {
		t.Errorf("Cell(0, A_MEAN) = %q; want %q", got, "132,930")
	}
}

func TestParseCSVWithBOMAndRaggedRows(t *testing.T) {
	data := []byte("\xef\xbb\xbfA,B,C\n1,2\n\n3,4,5,6\n")
	table, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Columns[0].Name != "A" {
		t.Errorf("first column = %q; want A", table.Columns[0].Name)
	}
	if table.Len() != 2 {
		t.Fatalf("rows: got %d, want 2 (blank row skipped)", table.Len())
	}
	if got := table.Cell(0, 2); got != "" {
		t.Errorf("short row padding: got %q, want empty", got)
	}
	if got := table.Cell(1, 2); got != "5" {
		t.Errorf("Cell(1, 2) = %q; want 5", got)
	}
}

func TestParseZipWithCSVMember(t *testing.T) {
	data := buildZip(t, map[string][]byte{
		"oesm23nat/readme.csv":            []byte("note\nsmall\n"),
		"oesm23nat/national_M2023_dl.csv": []byte(blsCSV),
	})

	table, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Index("OCC_TITLE") < 0 || table.Len() != 2 {
		t.Errorf("expected the larger data member to be parsed, got header %v", table.Header())
	}
}

func TestParseXLSX(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		{"CASE_STATUS", "SOC_TITLE", "WORKSITE_STATE", "WAGE_RATE_OF_PAY_FROM", "WAGE_UNIT_OF_PAY"},
		{"Certified", "Software Developers", "CA", 150000, "Year"},
		{"Denied", "Data Scientists", "NY", 60, "Hour"},
	})

	table, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows: got %d, want 2", table.Len())
	}
	if got := table.Cell(0, table.Index("WORKSITE_STATE")); got != "CA" {
		t.Errorf("WORKSITE_STATE = %q; want CA", got)
	}
	if got := table.Cell(1, table.Index("WAGE_RATE_OF_PAY_FROM")); got != "60" {
		t.Errorf("WAGE_RATE_OF_PAY_FROM = %q; want 60", got)
	}
}

func TestParseZipWithXLSXMember(t *testing.T) {
	inner := buildXLSX(t, [][]interface{}{
		{"OCC_TITLE", "AREA_TITLE", "A_MEAN"},
		{"Actuaries", "U.S.", 125770},
	})
	data := buildZip(t, map[string][]byte{"national_M2023_dl.xlsx": inner})

	table, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := table.Cell(0, table.Index("OCC_TITLE")); got != "Actuaries" {
		t.Errorf("OCC_TITLE = %q; want Actuaries", got)
	}
}

func TestParseRejectsUndecodablePayloads(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"whitespace", []byte("  \n ")},
		{"html", []byte("<!DOCTYPE html><html><body>Access Denied</body></html>")},
		{"binary", []byte{'a', 0, 'b', 0}},
		{"broken zip", append([]byte("PK\x03\x04"), 0xff, 0x00, 0x13)},
		{"legacy xls", buildZip(t, map[string][]byte{"national_dl.xls": []byte("xls")})},
		{"no data member", buildZip(t, map[string][]byte{"readme.txt": []byte("hi")})},
	}

	for _, tt := range tests {
		_, err := Parse(tt.data)
		if !apperr.IsKind(err, apperr.KindParse) {
			t.Errorf("%s: Parse err = %v; want PARSE error", tt.name, err)
		}
	}
}
