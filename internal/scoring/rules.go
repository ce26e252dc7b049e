package scoring

import (
	"fmt"
	"os"

	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"gopkg.in/yaml.v3"
)

// CategoryRule holds the adjustments applied to answers in one category.
type CategoryRule struct {
	NegativePenalty int `yaml:"negative_penalty"`
	PositiveBonus   int `yaml:"positive_bonus"`
	// Multi-select answers with fewer than MinSelections are penalized by
	// SparsePenalty; at least RichSelections earn RichBonus. A zero
	// threshold disables that side.
	MinSelections  int `yaml:"min_selections"`
	SparsePenalty  int `yaml:"sparse_penalty"`
	RichSelections int `yaml:"rich_selections"`
	RichBonus      int `yaml:"rich_bonus"`
}

// Rules is the full scoring table.
type Rules struct {
	Baseline              int                              `yaml:"baseline"`
	EmptyScore            int                              `yaml:"empty_score"`
	UndeterminedPenalty   int                              `yaml:"undetermined_penalty"`
	NegativeLeadingWords  []string                         `yaml:"negative_leading_words"`
	StrongControlKeywords []string                         `yaml:"strong_control_keywords"`
	Categories            map[models.Category]CategoryRule `yaml:"categories"`
}

// DefaultRules returns the built-in table. The magnitudes are product
// heuristics and can be overridden from a YAML file.
func DefaultRules() Rules {
	return Rules{
		Baseline:             100,
		EmptyScore:           50,
		UndeterminedPenalty:  5,
		NegativeLeadingWords: []string{"no", "never", "basic", "none"},
		StrongControlKeywords: []string{
			"comprehensive", "aes-256", "aes 256", "tls 1.2", "tls 1.3",
			"fips 140", "end-to-end encryption", "hardware security module",
		},
		Categories: map[models.Category]CategoryRule{
			models.CategoryCyber:       {NegativePenalty: 15, PositiveBonus: 5, MinSelections: 3, SparsePenalty: 10, RichSelections: 5, RichBonus: 5},
			models.CategoryPrivacy:     {NegativePenalty: 12, PositiveBonus: 5, MinSelections: 2, SparsePenalty: 8, RichSelections: 4, RichBonus: 4},
			models.CategoryOperational: {NegativePenalty: 10, PositiveBonus: 3, MinSelections: 2, SparsePenalty: 5, RichSelections: 4, RichBonus: 3},
			models.CategoryFinancial:   {NegativePenalty: 10, PositiveBonus: 3, MinSelections: 1, SparsePenalty: 5, RichSelections: 3, RichBonus: 3},
			models.CategoryCompliance:  {NegativePenalty: 12, PositiveBonus: 5, MinSelections: 2, SparsePenalty: 8, RichSelections: 4, RichBonus: 4},
			models.CategoryGeneral:     {NegativePenalty: 5, PositiveBonus: 2, MinSelections: 1, SparsePenalty: 3, RichSelections: 3, RichBonus: 2},
		},
	}
}

// LoadRules reads a YAML rule table from path. Fields missing from the file
// keep their default values; categories present in the file replace the
// default rule for that category.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read scoring rules: %w", err)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Rules{}, fmt.Errorf("parse scoring rules: %w", err)
	}

	if override.Baseline != 0 {
		rules.Baseline = override.Baseline
	}
	if override.EmptyScore != 0 {
		rules.EmptyScore = override.EmptyScore
	}
	if override.UndeterminedPenalty != 0 {
		rules.UndeterminedPenalty = override.UndeterminedPenalty
	}
	if len(override.NegativeLeadingWords) > 0 {
		rules.NegativeLeadingWords = override.NegativeLeadingWords
	}
	if len(override.StrongControlKeywords) > 0 {
		rules.StrongControlKeywords = override.StrongControlKeywords
	}
	for cat, rule := range override.Categories {
		if !cat.Valid() {
			return Rules{}, fmt.Errorf("parse scoring rules: unknown category %q", cat)
		}
		rules.Categories[cat] = rule
	}

	return rules, nil
}
