package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
	"compensation-dashboard/utils"
)

// Normalizer reshapes source tables into unified compensation records.
type Normalizer struct {
	mappings map[models.SourceID]SourceMapping
	logger   *utils.Logger
}

// NewNormalizer creates a Normalizer using the default source mappings.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return NewNormalizerWithMappings(DefaultMappings(), logger)
}

// NewNormalizerWithMappings creates a Normalizer with explicit mappings.
func NewNormalizerWithMappings(mappings map[models.SourceID]SourceMapping, logger *utils.Logger) *Normalizer {
	return &Normalizer{mappings: mappings, logger: logger}
}

// resolved holds the column positions of a mapping within one table.
type resolved struct {
	job, location, experience, unit int
	salaryCols                      []int
	factors                         []float64
	filters                         map[int]map[string]struct{}
}

// Normalize maps a raw table from the given source onto the unified schema.
// Rows without a job category or location, or with an unusable salary,
// are dropped rather than defaulted.
func (n *Normalizer) Normalize(source models.SourceID, table *models.RawTable, year int) ([]models.CompensationRecord, error) {
	m, ok := n.mappings[source]
	if !ok {
		return nil, apperr.InvalidInput(fmt.Sprintf("no column mapping for source %q", source), nil)
	}

	cols, err := resolve(m, table)
	if err != nil {
		return nil, apperr.Parse(fmt.Sprintf("%s %d: schema does not match mapping", source, year), err)
	}

	total := table.Len()
	result := make([]models.CompensationRecord, 0, total)
	filtered := 0

	for row := 0; row < total; row++ {
		if !cols.keep(table, row) {
			filtered++
			continue
		}

		rec := models.CompensationRecord{
			JobCategory: normaliseText(table.Cell(row, cols.job)),
			Location:    normaliseText(table.Cell(row, cols.location)),
			Year:        year,
			Source:      source,
		}
		if cols.experience >= 0 {
			rec.ExperienceLevel = normaliseText(table.Cell(row, cols.experience))
		}

		salary, ok := cols.salary(table, row, m.UnitFactors)
		if !ok {
			continue
		}
		rec.Salary = salary

		if !rec.Valid() {
			continue
		}
		result = append(result, rec)
	}

	dropped := total - filtered - len(result)
	n.logger.Info("[normalizer] %s %d: %d rows → %d records (filtered %d, dropped %d)",
		source, year, total, len(result), filtered, dropped)
	return result, nil
}

func resolve(m SourceMapping, table *models.RawTable) (*resolved, error) {
	r := &resolved{
		job:        table.Lookup(m.JobCategory...),
		location:   table.Lookup(m.Location...),
		experience: table.Lookup(m.ExperienceLevel...),
		unit:       table.Lookup(m.UnitColumn...),
		filters:    make(map[int]map[string]struct{}),
	}

	var missing []string
	if r.job < 0 {
		missing = append(missing, "job category "+strings.Join(m.JobCategory, "|"))
	}
	if r.location < 0 {
		missing = append(missing, "location "+strings.Join(m.Location, "|"))
	}
	for _, sc := range m.Salary {
		if i := table.Index(sc.Column); i >= 0 {
			r.salaryCols = append(r.salaryCols, i)
			r.factors = append(r.factors, sc.Factor)
		}
	}
	if len(r.salaryCols) == 0 {
		missing = append(missing, "salary")
	}
	if len(m.UnitColumn) > 0 && r.unit < 0 {
		missing = append(missing, "pay unit "+strings.Join(m.UnitColumn, "|"))
	}
	for _, f := range m.Filters {
		i := table.Lookup(f.Columns...)
		if i < 0 {
			missing = append(missing, "filter "+strings.Join(f.Columns, "|"))
			continue
		}
		set := make(map[string]struct{}, len(f.Allowed))
		for _, v := range f.Allowed {
			set[strings.ToLower(v)] = struct{}{}
		}
		r.filters[i] = set
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return r, nil
}

// keep applies the mapping's row filters.
func (r *resolved) keep(table *models.RawTable, row int) bool {
	for col, allowed := range r.filters {
		if _, ok := allowed[strings.ToLower(table.Cell(row, col))]; !ok {
			return false
		}
	}
	return true
}

// salary returns the annualized salary of a row.
func (r *resolved) salary(table *models.RawTable, row int, unitFactors map[string]float64) (float64, bool) {
	unitFactor := 1.0
	if r.unit >= 0 {
		f, ok := unitFactors[strings.ToLower(table.Cell(row, r.unit))]
		if !ok {
			return 0, false
		}
		unitFactor = f
	}

	for i, col := range r.salaryCols {
		v, ok := parseSalary(table.Cell(row, col))
		if !ok {
			continue
		}
		annual := v * r.factors[i] * unitFactor
		if annual > maxSalary {
			return 0, false
		}
		return annual, true
	}
	return 0, false
}

// maxSalary bounds annualized salaries; larger values are data errors.
const maxSalary = 100_000_000

// parseSalary parses a plain decimal currency amount such as "$132,930.50".
// Suppression markers ("*", "#"), negatives, exponents and hex literals
// are rejected.
func parseSalary(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '$' || r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if !plainDecimal(cleaned) {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v > maxSalary {
		return 0, false
	}
	return v, true
}

// plainDecimal reports whether s is digits with at most one decimal point.
func plainDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Combine concatenates normalized record sequences into a dataset.
func Combine(parts ...[]models.CompensationRecord) *models.Dataset {
	return models.Combine(parts...)
}
