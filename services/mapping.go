package services

import "compensation-dashboard/models"

// SalaryColumn is a raw salary column and the factor that annualizes it.
type SalaryColumn struct {
	Column string
	Factor float64
}

// RowFilter keeps only rows whose column holds one of the allowed values,
// compared case-insensitively. The first candidate column present in the
// table is used; a table with none of them does not match the mapping.
type RowFilter struct {
	Columns []string
	Allowed []string
}

// SourceMapping maps one source's raw schema onto the unified schema.
// Column names are matched case-insensitively; for every field the first
// candidate present in the table is used.
type SourceMapping struct {
	JobCategory     []string
	Location        []string
	ExperienceLevel []string

	// Salary columns are tried in order; the first parseable value wins.
	Salary []SalaryColumn

	// UnitColumn, when present, names the pay period of the salary value,
	// and UnitFactors annualizes it. Unknown units drop the row.
	UnitColumn  []string
	UnitFactors map[string]float64

	Filters []RowFilter
}

const hoursPerYear = 2080

// DefaultMappings returns the column mapping rules for the known sources.
func DefaultMappings() map[models.SourceID]SourceMapping {
	return map[models.SourceID]SourceMapping{
		models.SourceBLS: {
			JobCategory: []string{"OCC_TITLE"},
			Location:    []string{"AREA_TITLE", "AREA_NAME"},
			Salary: []SalaryColumn{
				{Column: "A_MEAN", Factor: 1},
				{Column: "H_MEAN", Factor: hoursPerYear},
			},
			// Older files name the group column OCC_GROUP.
			Filters: []RowFilter{
				{Columns: []string{"O_GROUP", "OCC_GROUP"}, Allowed: []string{"detailed"}},
			},
		},
		models.SourceH1B: {
			JobCategory:     []string{"SOC_TITLE", "JOB_TITLE"},
			Location:        []string{"WORKSITE_STATE", "WORKSITE_STATE_1"},
			ExperienceLevel: []string{"PW_WAGE_LEVEL", "PW_WAGE_LEVEL_1"},
			Salary: []SalaryColumn{
				{Column: "WAGE_RATE_OF_PAY_FROM", Factor: 1},
				{Column: "WAGE_RATE_OF_PAY_FROM_1", Factor: 1},
			},
			UnitColumn: []string{"WAGE_UNIT_OF_PAY", "WAGE_UNIT_OF_PAY_1"},
			UnitFactors: map[string]float64{
				"year":      1,
				"month":     12,
				"bi-weekly": 26,
				"week":      52,
				"hour":      hoursPerYear,
			},
			Filters: []RowFilter{
				{Columns: []string{"CASE_STATUS"}, Allowed: []string{"Certified"}},
			},
		},
	}
}
