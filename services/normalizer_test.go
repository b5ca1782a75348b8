package services

import (
	"testing"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
	"compensation-dashboard/utils"
)

func TestNormalizeBLS(t *testing.T) {
	table := models.NewRawTable(
		[]string{"area_title", "OCC_TITLE", "O_GROUP", "H_MEAN", "A_MEAN"},
		[][]string{
			{"California", "Data Scientists", "detailed", "60.00", "$125,000"},
			{"Texas", "  Data   Scientists ", "detailed", "50.00", "*"},
			{"Texas", "All Occupations", "total", "30.00", "62,000"},
			{"", "Data Scientists", "detailed", "", "99000"},
			{"Ohio", "Data Scientists", "detailed", "#", "#"},
		},
	)

	n := NewNormalizer(utils.NewNopLogger())
	got, err := n.Normalize(models.SourceBLS, table, 2022)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records: got %d, want 2", len(got))
	}

	want := []models.CompensationRecord{
		{JobCategory: "Data Scientists", Location: "California", Salary: 125000, Year: 2022, Source: models.SourceBLS},
		{JobCategory: "Data Scientists", Location: "Texas", Salary: 104000, Year: 2022, Source: models.SourceBLS},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNormalizeH1B(t *testing.T) {
	table := models.NewRawTable(
		[]string{"CASE_STATUS", "SOC_TITLE", "WORKSITE_STATE", "PW_WAGE_LEVEL", "WAGE_RATE_OF_PAY_FROM", "WAGE_UNIT_OF_PAY"},
		[][]string{
			{"Certified", "Software Developers", "CA", "II", "150000", "Year"},
			{"Certified", "Software Developers", "NY", "I", "50", "Hour"},
			{"Certified", "Software Developers", "WA", "III", "10000", "Month"},
			{"Denied", "Software Developers", "CA", "II", "140000", "Year"},
			{"Certified", "Software Developers", "TX", "", "1000", "Fortnight"},
			{"Certified", "Software Developers", "TX", "", "-5", "Year"},
		},
	)

	n := NewNormalizer(utils.NewNopLogger())
	got, err := n.Normalize(models.SourceH1B, table, 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("records: got %d, want 3", len(got))
	}

	tests := []struct {
		loc, level string
		salary     float64
	}{
		{"CA", "II", 150000},
		{"NY", "I", 104000},
		{"WA", "III", 120000},
	}
	for i, tt := range tests {
		r := got[i]
		if r.Location != tt.loc || r.ExperienceLevel != tt.level || r.Salary != tt.salary {
			t.Errorf("record %d: got %+v, want %s/%s/%.0f", i, r, tt.loc, tt.level, tt.salary)
		}
		if r.Source != models.SourceH1B || r.Year != 2023 {
			t.Errorf("record %d: provenance %s/%d", i, r.Source, r.Year)
		}
	}
}

func TestNormalizeRejectsNonDecimalSalaries(t *testing.T) {
	table := models.NewRawTable(
		[]string{"OCC_TITLE", "AREA_TITLE", "O_GROUP", "A_MEAN"},
		[][]string{
			{"Data Scientists", "California", "detailed", "1e308"},
			{"Data Scientists", "Texas", "detailed", "1e308"},
			{"Data Scientists", "Ohio", "detailed", "0x1p20"},
			{"Data Scientists", "Utah", "detailed", "98000"},
		},
	)

	n := NewNormalizer(utils.NewNopLogger())
	got, err := n.Normalize(models.SourceBLS, table, 2022)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Location != "Utah" {
		t.Fatalf("records: got %+v, want only Utah", got)
	}

	b, err := NewStatsEngine(Combine(got), utils.NewNopLogger()).ComputeBenchmarks("Data Scientists", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Mean != 98000 || b.Std != 0 {
		t.Errorf("benchmarks: got %+v", b)
	}
}

func TestNormalizeCapsAnnualizedSalary(t *testing.T) {
	table := models.NewRawTable(
		[]string{"CASE_STATUS", "SOC_TITLE", "WORKSITE_STATE", "WAGE_RATE_OF_PAY_FROM", "WAGE_UNIT_OF_PAY"},
		[][]string{
			{"Certified", "Software Developers", "CA", "90000000", "Hour"},
			{"Certified", "Software Developers", "NY", "60", "Hour"},
		},
	)

	n := NewNormalizer(utils.NewNopLogger())
	got, err := n.Normalize(models.SourceH1B, table, 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Salary != 124800 {
		t.Errorf("records: got %+v, want only NY at 124800", got)
	}
}

func TestNormalizeBLSOccGroupSchema(t *testing.T) {
	table := models.NewRawTable(
		[]string{"AREA_NAME", "OCC_TITLE", "OCC_GROUP", "A_MEAN"},
		[][]string{
			{"U.S.", "All Occupations", "total", "48320"},
			{"U.S.", "Management Occupations", "major", "110550"},
			{"U.S.", "Chief Executives", "detailed", "185850"},
		},
	)

	n := NewNormalizer(utils.NewNopLogger())
	got, err := n.Normalize(models.SourceBLS, table, 2015)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].JobCategory != "Chief Executives" || got[0].Location != "U.S." {
		t.Errorf("records: got %+v, want only Chief Executives", got)
	}
}

func TestNormalizeMissingFilterColumn(t *testing.T) {
	bls := models.NewRawTable(
		[]string{"OCC_TITLE", "AREA_TITLE", "A_MEAN"},
		[][]string{{"All Occupations", "U.S.", "48320"}},
	)
	h1b := models.NewRawTable(
		[]string{"SOC_TITLE", "WORKSITE_STATE", "WAGE_RATE_OF_PAY_FROM", "WAGE_UNIT_OF_PAY"},
		[][]string{{"Software Developers", "CA", "150000", "Year"}},
	)

	n := NewNormalizer(utils.NewNopLogger())
	if _, err := n.Normalize(models.SourceBLS, bls, 2010); !apperr.IsKind(err, apperr.KindParse) {
		t.Errorf("bls without group column: got %v, want PARSE", err)
	}
	if _, err := n.Normalize(models.SourceH1B, h1b, 2023); !apperr.IsKind(err, apperr.KindParse) {
		t.Errorf("h1b without case status: got %v, want PARSE", err)
	}
}

func TestNormalizeMissingColumns(t *testing.T) {
	table := models.NewRawTable([]string{"AREA_TITLE", "A_MEAN"}, [][]string{{"Texas", "1"}})

	n := NewNormalizer(utils.NewNopLogger())
	_, err := n.Normalize(models.SourceBLS, table, 2022)
	if !apperr.IsKind(err, apperr.KindParse) {
		t.Errorf("got %v, want PARSE", err)
	}
}

func TestNormalizeUnknownSource(t *testing.T) {
	n := NewNormalizer(utils.NewNopLogger())
	_, err := n.Normalize("glassdoor", models.NewRawTable(nil, nil), 2022)
	if !apperr.IsKind(err, apperr.KindInvalidInput) {
		t.Errorf("got %v, want INVALID_INPUT", err)
	}
}

func TestNormalizeEmptyTable(t *testing.T) {
	table := models.NewRawTable([]string{"OCC_TITLE", "AREA_TITLE", "O_GROUP", "A_MEAN"}, nil)

	n := NewNormalizer(utils.NewNopLogger())
	got, err := n.Normalize(models.SourceBLS, table, 2022)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestParseSalary(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"132930", 132930, true},
		{"$132,930.50", 132930.50, true},
		{" 1 000 ", 1000, true},
		{"*", 0, false},
		{"#", 0, false},
		{"", 0, false},
		{"-100", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e308", 0, false},
		{"1.5E5", 0, false},
		{"0x1p20", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"100000000", 100000000, true},
		{"100000001", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseSalary(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseSalary(%q): got (%.2f, %v), want (%.2f, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCombinePreservesOrder(t *testing.T) {
	a := []models.CompensationRecord{rec("A", "X", "", 1, 2020)}
	b := []models.CompensationRecord{rec("B", "Y", "", 2, 2021), rec("C", "Z", "", 3, 2021)}

	ds := Combine(a, b)
	if ds.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", ds.Len())
	}
	for i, want := range []string{"A", "B", "C"} {
		if got := ds.At(i).JobCategory; got != want {
			t.Errorf("record %d: got %s, want %s", i, got, want)
		}
	}
}
