package fetcher

import (
	"fmt"
	"strings"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
)

// Source describes where a dataset lives and how its cache entry is named.
type Source struct {
	ID      models.SourceID
	BaseURL string
	MinYear int
	// Ext is the cache file extension, matching the remote payload format.
	Ext string
	// fileName renders the remote file name for a year.
	fileName func(year int) string
}

const (
	DefaultBLSBaseURL = "https://www.bls.gov/oes/special.requests"
	DefaultH1BBaseURL = "https://www.dol.gov/sites/dolgov/files/ETA/oflc/pdfs"
)

func blsSource(baseURL string) Source {
	return Source{
		ID:      models.SourceBLS,
		BaseURL: orDefault(baseURL, DefaultBLSBaseURL),
		MinYear: 1997,
		Ext:     "zip",
		fileName: func(year int) string {
			return fmt.Sprintf("oesm%02dnat.zip", year%100)
		},
	}
}

func h1bSource(baseURL string) Source {
	return Source{
		ID:      models.SourceH1B,
		BaseURL: orDefault(baseURL, DefaultH1BBaseURL),
		MinYear: 2020,
		Ext:     "xlsx",
		fileName: func(year int) string {
			return fmt.Sprintf("H-1B_Disclosure_Data_FY%d.xlsx", year)
		},
	}
}

// URL returns the deterministic remote location for a year.
func (s Source) URL(year int) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + s.fileName(year)
}

// CacheKey returns the local cache entry name for a year.
func (s Source) CacheKey(year int) string {
	return fmt.Sprintf("%s_data_%d.%s", s.ID, year, s.Ext)
}

func (s Source) validateYear(year int) error {
	if year < s.MinYear || year > 9999 {
		return apperr.InvalidInput(fmt.Sprintf("%s: year %d outside supported range (min %d)", s.ID, year, s.MinYear), nil)
	}
	return nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
