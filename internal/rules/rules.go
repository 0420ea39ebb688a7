// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules defines the static plausibility rule set consulted by the
// query interpreter and the result verifier.
// Implements: prd002-rules (R1-R6);
//
//	docs/ARCHITECTURE.md § Plausibility Rules.
//
// The rule set is configuration, not runtime state: changing a value changes
// verification outcomes deterministically, and nothing here mutates after
// Compile.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Band is a category-specific expected amount range in euro. Bands are
// plausibility signals, not hard rejects (R3.2).
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Set holds every configured rule. Load a Set from YAML or start from
// Default, then call Compile before use.
type Set struct {
	// YearMin and YearMax bound plausible budget years (R1.1). The strict
	// profile used for freshly imported ledgers raises YearMin to 2000.
	YearMin int `yaml:"year_min"`
	YearMax int `yaml:"year_max"`

	// AmountMin and AmountMax bound plausible single amounts in euro (R1.2).
	// AmountMax doubles as the maximum single-expense ceiling.
	AmountMin float64 `yaml:"amount_min"`
	AmountMax float64 `yaml:"amount_max"`

	// Categories is the closed budget category vocabulary (R2.1).
	Categories []string `yaml:"categories"`

	// CategoryBands maps a category to its expected amount band (R3.1).
	CategoryBands map[string]Band `yaml:"category_bands"`

	// SuspiciousPatterns are regexes matched against a record's serialized
	// form. A hit is near-disqualifying (R4.1).
	SuspiciousPatterns []string `yaml:"suspicious_patterns"`

	// SuspiciousWords flag placeholder or test descriptions (R4.2).
	SuspiciousWords []string `yaml:"suspicious_words"`

	// ProjectWords are expected in descriptions of high amounts (R3.3).
	ProjectWords []string `yaml:"project_words"`

	// MinDescriptionLen is the minimum plausible description length (R3.4).
	MinDescriptionLen int `yaml:"min_description_len"`

	// HighAmountFloor is the amount above which a description must contain
	// a project word (R3.3).
	HighAmountFloor float64 `yaml:"high_amount_floor"`

	// DocumentTypes, DocumentExtensions, and MaxFileSize validate document
	// records (R5.1-R5.3).
	DocumentTypes      []string `yaml:"document_types"`
	DocumentExtensions []string `yaml:"document_extensions"`
	MaxFileSize        int64    `yaml:"max_file_size"`

	// Stopwords is the German stopword list shared by keyword extraction
	// and relevance scoring.
	Stopwords []string `yaml:"stopwords"`

	compiled  []*regexp.Regexp
	stopwords map[string]struct{}
	catset    map[string]struct{}
}

// Default returns the compiled-in rule set. YearMax derives from now so the
// upcoming budget year is always plausible (R1.1).
func Default(now time.Time) *Set {
	return &Set{
		YearMin:   1990,
		YearMax:   now.Year() + 1,
		AmountMin: -1_000_000,
		AmountMax: 10_000_000,
		Categories: []string{
			"infrastruktur", "personal", "kultur", "umwelt",
			"bildung", "soziales", "verwaltung", "sonstiges",
		},
		CategoryBands: map[string]Band{
			"personal":      {Min: 1000, Max: 500_000},
			"infrastruktur": {Min: 100, Max: 5_000_000},
			"kultur":        {Min: 50, Max: 100_000},
		},
		SuspiciousPatterns: []string{
			// Absurd amounts: over 100 million or under -10 million.
			`betrag:[1-9]\d{8,}`,
			`betrag:-[1-9]\d{7,}`,
			// Impossible years.
			`jahr:(19[0-8]\d|20[3-9]\d)`,
			`datum:19[0-8]\d`,
			// Fantastical descriptions and magnitudes.
			`beschreibung:.*(alien|ufo|zeitreise|magie)`,
			`beschreibung:.*(milliarde|billion)`,
			// Impossible categories.
			`kategorie:.*(weltraum|mars|mond)`,
		},
		SuspiciousWords: []string{"fake", "test", "dummy", "beispiel", "placeholder"},
		ProjectWords:    []string{"projekt", "bau", "investition", "sanierung"},

		MinDescriptionLen: 3,
		HighAmountFloor:   100_000,

		DocumentTypes:      []string{"protokoll", "bericht", "beschluss", "vertrag", "rechnung"},
		DocumentExtensions: []string{".pdf", ".docx", ".txt", ".xlsx"},
		MaxFileSize:        100 * 1024 * 1024,

		Stopwords: []string{
			"der", "die", "das", "den", "dem", "des", "ein", "eine", "einer", "eines",
			"und", "oder", "aber", "doch", "dann", "also", "noch", "nur", "schon",
			"auch", "sehr", "hier", "dort", "da", "so", "wie", "was", "wenn", "als",
			"aus", "viel", "viele",
			"bei", "mit", "nach", "vor", "auf", "fuer", "für", "zu", "an", "von", "in",
			"im", "ist", "sind", "war", "waren", "hat", "haben", "wird", "werden",
			"kann", "koennte", "soll", "sollte", "muss", "muessen", "darf", "duerfen",
		},
	}
}

// Load reads YAML rule overrides from path on top of Default(now). Only keys
// present in the file replace defaults (R6.1, R6.2).
func Load(path string, now time.Time) (*Set, error) {
	s := Default(now)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	return s, nil
}

// Compile prepares the pattern and lookup tables. It must be called once
// before the Set is used; an invalid pattern is a configuration error, not
// a verification finding.
func (s *Set) Compile() error {
	s.compiled = make([]*regexp.Regexp, 0, len(s.SuspiciousPatterns))
	for _, p := range s.SuspiciousPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("compiling suspicious pattern %q: %w", p, err)
		}
		s.compiled = append(s.compiled, re)
	}

	s.stopwords = make(map[string]struct{}, len(s.Stopwords))
	for _, w := range s.Stopwords {
		s.stopwords[w] = struct{}{}
	}

	s.catset = make(map[string]struct{}, len(s.Categories))
	for _, c := range s.Categories {
		s.catset[strings.ToLower(c)] = struct{}{}
	}
	return nil
}

// MatchSuspicious returns the patterns that match the serialized record text.
func (s *Set) MatchSuspicious(text string) []string {
	var hits []string
	for i, re := range s.compiled {
		if re.MatchString(text) {
			hits = append(hits, s.SuspiciousPatterns[i])
		}
	}
	return hits
}

// ValidCategory reports whether cat is in the closed vocabulary.
// Matching is case-insensitive.
func (s *Set) ValidCategory(cat string) bool {
	_, ok := s.catset[strings.ToLower(cat)]
	return ok
}

// Band returns the amount band for a category, if one is configured.
func (s *Set) Band(cat string) (Band, bool) {
	b, ok := s.CategoryBands[strings.ToLower(cat)]
	return b, ok
}

// IsStopword reports whether w is on the stopword list.
func (s *Set) IsStopword(w string) bool {
	_, ok := s.stopwords[w]
	return ok
}

// ValidDocType reports whether typ is a known document type.
func (s *Set) ValidDocType(typ string) bool {
	typ = strings.ToLower(typ)
	for _, t := range s.DocumentTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// ValidExtension reports whether filename ends in a known extension.
func (s *Set) ValidExtension(filename string) bool {
	name := strings.ToLower(filename)
	for _, ext := range s.DocumentExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
