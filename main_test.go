package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	outputFormat = "text"
	outputFile = ""
	encoding = "win1251"
	level = "body"
	selector = ""
	xpath = ""
	site = ""
	concurrency = 4
	maxPages = 0
	resume = false
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		set     func()
		wantErr string
	}{
		{"defaults", func() {}, ""},
		{"bad format", func() { outputFormat = "pdf" }, "invalid output format"},
		{"xlsx to stdout", func() { outputFormat = "xlsx" }, "--output is required"},
		{"xlsx to file", func() { outputFormat = "xlsx"; outputFile = "out.xlsx" }, ""},
		{"bad encoding", func() { encoding = "koi8-r" }, "unsupported encoding"},
		{"css without selector", func() { level = "css" }, "--selector is required"},
		{"xpath without expression", func() { level = "xpath"; selector = ".c" }, "--xpath is required"},
		{"zero concurrency", func() { concurrency = 0 }, "--concurrency"},
		{"resume without site", func() { resume = true }, "--resume requires --site"},
		{"resume to json", func() {
			resume = true
			site = "agravia"
			outputFile = "out.json"
			outputFormat = "json"
		}, "CSV --output"},
		{"resume", func() {
			resume = true
			site = "agravia"
			outputFile = "out.csv"
			outputFormat = "csv"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			tt.set()
			err := validateFlags()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders([]string{"Referer: https://catalog.climatexpo.ru/", "broken", " : empty key", "Cookie:a=b:c"})
	assert.Equal(t, map[string]string{
		"Referer": "https://catalog.climatexpo.ru/",
		"Cookie":  "a=b:c",
	}, got)
}

func TestSitesCommand(t *testing.T) {
	t.Setenv("EXPOGRAB_SITES_FILE", "")
	sitesFile = ""
	envFile = ""

	var out bytes.Buffer
	cmd := newSitesCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "agravia "))
	assert.Contains(t, out.String(), "diveshow ")
	assert.Contains(t, out.String(), "upakexpo ")
}

func TestRootCmd_FlagDefaults(t *testing.T) {
	cmd := newRootCmd()
	defaults := map[string]string{
		"timeout":     "30s",
		"retries":     "2",
		"concurrency": "4",
		"encoding":    "win1251",
		"format":      "text",
		"level":       "body",
	}
	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, want, flag.DefValue, name)
	}
	assert.Equal(t, "info", cmd.PersistentFlags().Lookup("log-level").DefValue)
}
