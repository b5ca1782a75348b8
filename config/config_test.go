package config

import (
	"reflect"
	"testing"
	"time"
)

func TestGetEnvInts(t *testing.T) {
	fallback := []int{2023}

	tests := []struct {
		val  string
		want []int
	}{
		{"", []int{2023}},
		{"2022", []int{2022}},
		{"2021,2023", []int{2021, 2023}},
		{"2020-2022", []int{2020, 2021, 2022}},
		{"2019, 2021-2022", []int{2019, 2021, 2022}},
		{"abc", []int{2023}},
		{"2023-2021", []int{2023}},
	}

	for _, tt := range tests {
		t.Setenv("TEST_YEARS", tt.val)
		got := getEnvInts("TEST_YEARS", fallback)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("getEnvInts(%q) = %v; want %v", tt.val, got, tt.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("FETCH_MODE", "")
	t.Setenv("CACHE_BACKEND", "")

	cfg := Load()
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout: got %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.FetchMode != "http" {
		t.Errorf("FetchMode: got %q, want http", cfg.FetchMode)
	}
	if cfg.CacheBackend != "file" {
		t.Errorf("CacheBackend: got %q, want file", cfg.CacheBackend)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("MAX_RETRIES", "7")
	t.Setenv("FETCH_MODE", "Browser")

	cfg := Load()
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout: got %v, want 5s", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries: got %d, want 7", cfg.MaxRetries)
	}
	if cfg.FetchMode != "browser" {
		t.Errorf("FetchMode: got %q, want browser", cfg.FetchMode)
	}
}
