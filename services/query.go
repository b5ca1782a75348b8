package services

import "compensation-dashboard/models"

// Criteria is a conjunctive equality filter over compensation records.
// Empty optional fields mean "no restriction".
type Criteria struct {
	JobCategory     string
	Location        string
	ExperienceLevel string
}

// ForJob starts a query for a job category.
func ForJob(job string) Criteria {
	return Criteria{JobCategory: job}
}

// InLocation narrows the query to one location.
func (c Criteria) InLocation(location string) Criteria {
	c.Location = location
	return c
}

// AtLevel narrows the query to one experience level.
func (c Criteria) AtLevel(level string) Criteria {
	c.ExperienceLevel = level
	return c
}

// Matches reports whether r satisfies every set field.
func (c Criteria) Matches(r models.CompensationRecord) bool {
	if r.JobCategory != c.JobCategory {
		return false
	}
	if c.Location != "" && r.Location != c.Location {
		return false
	}
	if c.ExperienceLevel != "" && r.ExperienceLevel != c.ExperienceLevel {
		return false
	}
	return true
}

// Salaries returns the salaries of matching records in dataset order.
func (c Criteria) Salaries(d *models.Dataset) []float64 {
	var out []float64
	d.Each(func(r models.CompensationRecord) bool {
		if c.Matches(r) {
			out = append(out, r.Salary)
		}
		return true
	})
	return out
}
