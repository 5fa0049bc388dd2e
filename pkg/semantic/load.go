package semantic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlFieldMapping and yamlMultiConditionRule mirror the on-disk YAML shape
// for a rule file; LoadRuleSet decodes into these before converting to the
// engine-facing FieldMappingRule/MultiConditionRule types.
type yamlFieldMapping struct {
	RuleID         string  `yaml:"rule_id"`
	Artifact       string  `yaml:"artifact"`
	Field          string  `yaml:"field"`
	TechnicalValue string  `yaml:"technical_value"`
	Pattern        string  `yaml:"pattern"`
	Operator       string  `yaml:"operator"`
	SemanticValue  string  `yaml:"semantic_value"`
	Category       string  `yaml:"category"`
	Severity       string  `yaml:"severity"`
	Confidence     float64 `yaml:"confidence"`
}

type yamlCondition struct {
	FeatherID string      `yaml:"feather_id"`
	Field     string      `yaml:"field"`
	Value     interface{} `yaml:"value"`
	Operator  string      `yaml:"operator"`
}

type yamlMultiConditionRule struct {
	RuleID        string                 `yaml:"rule_id"`
	Conditions    []yamlCondition        `yaml:"conditions"`
	Combinator    string                 `yaml:"combinator"`
	SemanticValue string                 `yaml:"semantic_value"`
	Metadata      map[string]interface{} `yaml:"metadata"`
	Confidence    float64                `yaml:"confidence"`
}

type yamlRuleFile struct {
	FieldMappings       []yamlFieldMapping       `yaml:"field_mappings"`
	MultiConditionRules []yamlMultiConditionRule `yaml:"multi_condition_rules"`
}

type yamlAliasCatalog struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// LoadRuleSet reads a rule file from path and decodes it into a RuleSet for
// the given scope.
func LoadRuleSet(path string, scope Scope) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("semantic: read rule file %q: %w", path, err)
	}
	var yf yamlRuleFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("semantic: parse rule file %q: %w", path, err)
	}

	rs := &RuleSet{Scope: scope}
	for _, fm := range yf.FieldMappings {
		rs.FieldMappings = append(rs.FieldMappings, FieldMappingRule{
			RuleID:         fm.RuleID,
			Artifact:       fm.Artifact,
			Field:          fm.Field,
			TechnicalValue: fm.TechnicalValue,
			Pattern:        fm.Pattern,
			Operator:       Operator(fm.Operator),
			SemanticValue:  fm.SemanticValue,
			Category:       fm.Category,
			Severity:       fm.Severity,
			Confidence:     fm.Confidence,
		})
	}
	for _, mc := range yf.MultiConditionRules {
		rule := MultiConditionRule{
			RuleID:        mc.RuleID,
			Combinator:    Combinator(mc.Combinator),
			SemanticValue: mc.SemanticValue,
			Metadata:      mc.Metadata,
			Confidence:    mc.Confidence,
		}
		for _, c := range mc.Conditions {
			rule.Conditions = append(rule.Conditions, Condition{
				FeatherID: c.FeatherID,
				Field:     c.Field,
				Value:     c.Value,
				Operator:  Operator(c.Operator),
			})
		}
		rs.MultiConditionRules = append(rs.MultiConditionRules, rule)
	}
	return rs, nil
}

// LoadAliasIndex reads an alias catalog YAML file into an AliasIndex.
func LoadAliasIndex(path string) (*AliasIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("semantic: read alias catalog %q: %w", path, err)
	}
	var ac yamlAliasCatalog
	if err := yaml.Unmarshal(data, &ac); err != nil {
		return nil, fmt.Errorf("semantic: parse alias catalog %q: %w", path, err)
	}
	return NewAliasIndex(ac.Aliases), nil
}

// CatalogSources names the optional file paths a Catalog is built from. Any
// path left empty is simply skipped at that scope.
type CatalogSources struct {
	GlobalPath   string
	PipelinePath string
	WingPaths    map[string]string // wing_id -> rule file path
	AliasPath    string
}

// LoadCatalog builds a Catalog from sources, loading whichever scopes have a
// configured path. A missing optional scope is not an error; a malformed
// file at a configured path is. Callers should treat any returned error as
// non-fatal and fall back to a nil catalog (NewMapper(nil, ...)).
func LoadCatalog(sources CatalogSources) (*Catalog, error) {
	cat := &Catalog{Wing: map[string]*RuleSet{}}

	if sources.AliasPath != "" {
		idx, err := LoadAliasIndex(sources.AliasPath)
		if err != nil {
			return nil, err
		}
		cat.Aliases = idx
	}
	if sources.GlobalPath != "" {
		rs, err := LoadRuleSet(sources.GlobalPath, ScopeGlobal)
		if err != nil {
			return nil, err
		}
		cat.Global = rs
	}
	if sources.PipelinePath != "" {
		rs, err := LoadRuleSet(sources.PipelinePath, ScopePipeline)
		if err != nil {
			return nil, err
		}
		cat.Pipeline = rs
	}
	for wingID, path := range sources.WingPaths {
		rs, err := LoadRuleSet(path, ScopeWing)
		if err != nil {
			return nil, err
		}
		cat.Wing[wingID] = rs
	}
	return cat, nil
}
