package semantic

import (
	"fmt"
	"log/slog"

	"wingspan/pkg/correlation"
	"wingspan/pkg/record"
)

// Scope identifies which configuration layer a rule set was loaded from.
// Precedence is Wing > Pipeline > Global: a wing-scoped rule set, if
// present, is used in isolation; otherwise the pipeline-scoped set; otherwise
// the global set.
type Scope string

const (
	ScopeWing     Scope = "wing"
	ScopePipeline Scope = "pipeline"
	ScopeGlobal   Scope = "global"
)

// RuleSet is one scope's collection of semantic rules.
type RuleSet struct {
	Scope                Scope
	FieldMappings        []FieldMappingRule
	MultiConditionRules   []MultiConditionRule
}

// Catalog holds the rule sets available at every scope plus the shared alias
// index, and resolves wing > pipeline > global precedence on lookup.
type Catalog struct {
	Wing     map[string]*RuleSet // keyed by wing_id
	Pipeline *RuleSet
	Global   *RuleSet
	Aliases  *AliasIndex
}

// Resolve returns the effective rule set for wingID, per scope precedence.
// Returns nil only when no rule set exists at any scope, meaning the mapper
// should degrade to "no annotations".
func (c *Catalog) Resolve(wingID string) *RuleSet {
	if c == nil {
		return nil
	}
	if rs, ok := c.Wing[wingID]; ok && rs != nil {
		return rs
	}
	if c.Pipeline != nil {
		return c.Pipeline
	}
	return c.Global
}

// Mapper applies semantic annotation rules to records and identities. A
// Mapper with a nil catalog (rule loading failed or annotations are
// disabled) degrades to a no-op.
type Mapper struct {
	catalog *Catalog
	logger  *slog.Logger
}

// NewMapper builds a Mapper from catalog. Pass a nil catalog (e.g. because
// LoadCatalog failed) to get a no-op mapper that never aborts an execution.
func NewMapper(catalog *Catalog, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{catalog: catalog, logger: logger}
}

// AnnotateRecord applies the resolved rule set's field-mapping rules to rec
// and returns all matching annotations, highest confidence first. Returns
// nil when annotations are unavailable for wingID.
func (m *Mapper) AnnotateRecord(wingID, artifactType string, rec *record.Record) []Annotation {
	if m == nil || m.catalog == nil {
		return nil
	}
	rs := m.catalog.Resolve(wingID)
	if rs == nil {
		return nil
	}
	return ApplyFieldMappings(rs.FieldMappings, artifactType, rec, m.catalog.Aliases)
}

// AnnotateIdentity applies the resolved rule set's multi-condition rules to
// identity's aggregated evidence. Returns nil when annotations are
// unavailable for wingID.
func (m *Mapper) AnnotateIdentity(wingID string, identity *correlation.Identity) []Annotation {
	if m == nil || m.catalog == nil {
		return nil
	}
	rs := m.catalog.Resolve(wingID)
	if rs == nil {
		return nil
	}
	return ApplyMultiConditionRules(rs.MultiConditionRules, identity, m.catalog.Aliases)
}

// AnnotationsToSemanticData flattens record- and identity-level annotations
// into the map[string]interface{} carried on CorrelationMatch.SemanticData.
func AnnotationsToSemanticData(recordAnns, identityAnns []Annotation) map[string]interface{} {
	if len(recordAnns) == 0 && len(identityAnns) == 0 {
		return nil
	}
	out := make(map[string]interface{})
	if len(recordAnns) > 0 {
		items := make([]map[string]interface{}, len(recordAnns))
		for i, a := range recordAnns {
			items[i] = annotationToMap(a)
		}
		out["field_mappings"] = items
	}
	if len(identityAnns) > 0 {
		items := make([]map[string]interface{}, len(identityAnns))
		for i, a := range identityAnns {
			items[i] = annotationToMap(a)
		}
		out["identity_rules"] = items
	}
	return out
}

func annotationToMap(a Annotation) map[string]interface{} {
	return map[string]interface{}{
		"semantic_value": a.SemanticValue,
		"category":       a.Category,
		"severity":       a.Severity,
		"confidence":     a.Confidence,
		"rule_id":        a.SourceRuleID,
	}
}

// LoadError wraps a rule-loading failure. The caller (engine) should log a
// warning and proceed with a nil Catalog rather than abort.
type LoadError struct {
	Scope Scope
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("semantic: failed to load %s-scope rules: %v", e.Scope, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
