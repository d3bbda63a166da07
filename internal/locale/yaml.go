package locale

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// FileFormat is the on-disk shape of a locale extension file. Every field is
// optional; present fields override or extend the base locale.
type FileFormat struct {
	Base             string   `yaml:"base"`
	MonthNames       []string `yaml:"month_names"`
	NoiseKeywords    []string `yaml:"noise_keywords"`
	StreetKeywords   []string `yaml:"street_keywords"`
	LocationKeywords []string `yaml:"location_keywords"`
	StopWords        []string `yaml:"stop_words"`
	TableHeader      string   `yaml:"table_header_pattern"`
	Total            string   `yaml:"total_pattern"`
	HeaderMeta       string   `yaml:"header_meta_pattern"`
	PhonePatterns    []string `yaml:"phone_patterns"`
	PreferredCountry string   `yaml:"preferred_country"`
}

// LoadYAML reads a locale extension file and layers it over its base locale
// ("fr" unless the file says otherwise). The returned locale is a fresh
// value; built-in locales are never modified.
func LoadYAML(path string) (*Locale, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML builds a locale from raw YAML content.
func ParseYAML(data []byte) (*Locale, error) {
	var ff FileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse locale file: %w", err)
	}

	loc := ByName(ff.Base)
	out := *loc // shallow copy; slices below are replaced, never appended in place

	if len(ff.MonthNames) > 0 {
		out.MonthNames = ff.MonthNames
	}
	if len(ff.NoiseKeywords) > 0 {
		out.NoiseKeywords = append(append([]string{}, loc.NoiseKeywords...), ff.NoiseKeywords...)
	}
	if len(ff.StreetKeywords) > 0 {
		out.StreetKeywords = append(append([]string{}, loc.StreetKeywords...), ff.StreetKeywords...)
	}
	if len(ff.LocationKeywords) > 0 {
		out.LocationKeywords = append(append([]string{}, loc.LocationKeywords...), ff.LocationKeywords...)
	}
	if len(ff.StopWords) > 0 {
		out.StopWords = append(append([]string{}, loc.StopWords...), ff.StopWords...)
	}
	if ff.PreferredCountry != "" {
		out.PreferredCountry = ff.PreferredCountry
	}

	var err error
	if out.TableHeaderPattern, err = compileOverride(ff.TableHeader, loc.TableHeaderPattern); err != nil {
		return nil, err
	}
	if out.TotalPattern, err = compileOverride(ff.Total, loc.TotalPattern); err != nil {
		return nil, err
	}
	if out.HeaderMetaPattern, err = compileOverride(ff.HeaderMeta, loc.HeaderMetaPattern); err != nil {
		return nil, err
	}
	if len(ff.PhonePatterns) > 0 {
		out.PhonePatterns = nil
		for _, p := range ff.PhonePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("phone pattern %q: %w", p, err)
			}
			out.PhonePatterns = append(out.PhonePatterns, re)
		}
	}
	return &out, nil
}

func compileOverride(expr string, base *regexp.Regexp) (*regexp.Regexp, error) {
	if expr == "" {
		return base, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", expr, err)
	}
	return re, nil
}
