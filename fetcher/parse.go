package fetcher

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
)

var (
	zipMagic = []byte("PK\x03\x04")
	utf8BOM  = []byte("\xef\xbb\xbf")
)

// maxArchiveDepth bounds archive-in-archive recursion.
const maxArchiveDepth = 2

// Parse decodes a raw payload into a table. Spreadsheets (xlsx), zip
// archives holding a spreadsheet or CSV, and plain CSV are supported.
func Parse(data []byte) (*models.RawTable, error) {
	return parse(data, 0)
}

func parse(data []byte, depth int) (*models.RawTable, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperr.Parse("empty payload", nil)
	}
	if bytes.HasPrefix(data, zipMagic) {
		return parseZip(data, depth)
	}
	return parseCSV(data)
}

func parseZip(data []byte, depth int) (*models.RawTable, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.Parse("opening zip payload", err)
	}

	// An xlsx workbook is itself a zip with a content-types manifest.
	for _, f := range zr.File {
		if f.Name == "[Content_Types].xml" {
			return parseXLSX(data)
		}
	}

	if depth >= maxArchiveDepth {
		return nil, apperr.Parse("archive nested too deeply", nil)
	}

	member, err := pickMember(zr.File)
	if err != nil {
		return nil, err
	}

	rc, err := member.Open()
	if err != nil {
		return nil, apperr.Parse(fmt.Sprintf("opening archive member %q", member.Name), err)
	}
	defer rc.Close()

	inner, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperr.Parse(fmt.Sprintf("reading archive member %q", member.Name), err)
	}
	if strings.EqualFold(path.Ext(member.Name), ".csv") {
		return parseCSV(inner)
	}
	return parse(inner, depth+1)
}

// pickMember chooses the largest spreadsheet or CSV file in an archive;
// survey archives ship the data file next to small field descriptions.
func pickMember(files []*zip.File) (*zip.File, error) {
	var best *zip.File
	sawLegacy := false
	for _, f := range files {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".xlsx", ".csv":
			if best == nil || f.UncompressedSize64 > best.UncompressedSize64 {
				best = f
			}
		case ".xls":
			sawLegacy = true
		}
	}
	if best == nil {
		if sawLegacy {
			return nil, apperr.Parse("archive only holds legacy .xls workbooks, which are not supported", nil)
		}
		return nil, apperr.Parse("archive holds no spreadsheet or csv file", nil)
	}
	return best, nil
}

func parseXLSX(data []byte) (*models.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Parse("opening workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Parse("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Parse(fmt.Sprintf("reading sheet %q", sheets[0]), err)
	}
	return tableFromRows(rows)
}

func parseCSV(data []byte) (*models.RawTable, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, apperr.Parse("payload is binary, not delimited text", nil)
	}
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return nil, apperr.Parse("payload is an HTML/XML document, not delimited text", nil)
	}

	r := csv.NewReader(bytes.NewReader(trimmed))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, apperr.Parse("reading csv", err)
	}
	return tableFromRows(rows)
}

// tableFromRows uses the first non-blank row as the header.
func tableFromRows(rows [][]string) (*models.RawTable, error) {
	start := -1
	for i, row := range rows {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, apperr.Parse("no header row", nil)
	}

	header := rows[start]
	data := make([][]string, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		data = append(data, row)
	}
	return models.NewRawTable(header, data), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
