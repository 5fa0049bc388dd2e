package semantic

import (
	"sort"

	"wingspan/pkg/correlation"
	"wingspan/pkg/record"
)

// Annotation is one semantic label attached to a record or identity,
// carrying the interpretation metadata a field-mapping or multi-condition
// rule contributes.
type Annotation struct {
	SemanticValue string
	Category      string
	Severity      string
	Confidence    float64
	SourceRuleID  string
}

// FieldMappingRule maps one artifact's field, when it holds a technical
// value or matches a pattern, to a semantic annotation. Applied per record.
type FieldMappingRule struct {
	RuleID        string
	Artifact      string
	Field         string
	TechnicalValue string // exact match, ignored when Pattern is set
	Pattern       string  // when set, compared with Operator (OpMatches if empty) against Field's value
	Operator      Operator
	SemanticValue string
	Category      string
	Severity      string
	Confidence    float64
}

// condition is one clause of a MultiConditionRule.
type Condition struct {
	FeatherID string
	Field     string
	Value     interface{} // literal, wildcard pattern, or regex pattern depending on Operator
	Operator  Operator
}

// Combinator joins a multi-condition rule's clauses.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

// MultiConditionRule evaluates a list of conditions, combined with AND/OR,
// against one Identity's aggregated evidence.
type MultiConditionRule struct {
	RuleID        string
	Conditions    []Condition
	Combinator    Combinator
	SemanticValue string
	Metadata      map[string]interface{}
	Confidence    float64
}

// MatchFieldMapping evaluates rule against one record of the given artifact
// type, returning the annotation and whether it applied.
func MatchFieldMapping(rule FieldMappingRule, artifactType string, rec *record.Record, aliases *AliasIndex) (Annotation, bool) {
	if rule.Artifact != "" && rule.Artifact != artifactType {
		return Annotation{}, false
	}
	fieldName := aliases.Resolve(rule.Field)
	v, ok := rec.Get(fieldName)
	if !ok {
		return Annotation{}, false
	}
	actual := v.Any()

	matched := false
	if rule.Pattern != "" {
		op := rule.Operator
		if op == "" {
			op = OpMatches
		}
		ok, err := evaluateOperator(op, actual, rule.Pattern)
		matched = err == nil && ok
	} else {
		ok, err := evaluateEqual(actual, rule.TechnicalValue)
		matched = err == nil && ok
	}
	if !matched {
		return Annotation{}, false
	}

	return Annotation{
		SemanticValue: rule.SemanticValue,
		Category:      rule.Category,
		Severity:      rule.Severity,
		Confidence:    rule.Confidence,
		SourceRuleID:  rule.RuleID,
	}, true
}

// ApplyFieldMappings applies every rule in rules against rec (of the given
// artifact type), returning all matching annotations ordered by descending
// confidence: multiple mappings may match, and all are retained, highest
// confidence first.
func ApplyFieldMappings(rules []FieldMappingRule, artifactType string, rec *record.Record, aliases *AliasIndex) []Annotation {
	var out []Annotation
	for _, rule := range rules {
		if ann, ok := MatchFieldMapping(rule, artifactType, rec, aliases); ok {
			out = append(out, ann)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// identityRecords is the aggregated view of an Identity's evidence that
// multi-condition rules evaluate against: one record per (feather_id) drawn
// from the identity's anchors, keyed by feather id. When an identity touches
// a feather through multiple evidence rows, the most recent row's record
// wins.
func identityRecords(identity *correlation.Identity) map[string]*record.Record {
	byFeather := make(map[string]*record.Record)
	seenAt := make(map[string]int64)
	for _, anchor := range identity.Anchors {
		for _, row := range anchor.Rows {
			if row.OriginalData == nil {
				continue
			}
			var ts int64
			if row.Timestamp != nil {
				ts = row.Timestamp.Unix()
			}
			if prev, ok := seenAt[row.FeatherID]; !ok || ts >= prev {
				byFeather[row.FeatherID] = row.OriginalData
				seenAt[row.FeatherID] = ts
			}
		}
	}
	return byFeather
}

// evaluateCondition resolves cond.Field (alias-tolerant) within the record
// belonging to cond.FeatherID and applies cond.Operator.
func evaluateCondition(cond Condition, records map[string]*record.Record, aliases *AliasIndex) bool {
	rec, ok := records[cond.FeatherID]
	if !ok {
		return false
	}
	fieldName := aliases.Resolve(cond.Field)
	v, ok := rec.Get(fieldName)
	if !ok {
		return false
	}
	op := cond.Operator
	if op == "" {
		op = OpEqual
	}
	matched, err := evaluateOperator(op, v.Any(), cond.Value)
	return err == nil && matched
}

// MatchMultiCondition evaluates rule against identity's aggregated evidence,
// returning the annotation and whether the rule's combinator condition was
// satisfied.
func MatchMultiCondition(rule MultiConditionRule, identity *correlation.Identity, aliases *AliasIndex) (Annotation, bool) {
	if len(rule.Conditions) == 0 {
		return Annotation{}, false
	}
	records := identityRecords(identity)

	combinator := rule.Combinator
	if combinator == "" {
		combinator = CombinatorAnd
	}

	satisfied := combinator == CombinatorAnd
	for _, cond := range rule.Conditions {
		ok := evaluateCondition(cond, records, aliases)
		switch combinator {
		case CombinatorOr:
			if ok {
				satisfied = true
			}
		default: // AND
			if !ok {
				satisfied = false
			}
		}
	}
	if !satisfied {
		return Annotation{}, false
	}

	meta := rule.Metadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return Annotation{
		SemanticValue: rule.SemanticValue,
		Confidence:    rule.Confidence,
		SourceRuleID:  rule.RuleID,
	}, true
}

// ApplyMultiConditionRules evaluates every rule against identity, returning
// all rules whose condition set was satisfied.
func ApplyMultiConditionRules(rules []MultiConditionRule, identity *correlation.Identity, aliases *AliasIndex) []Annotation {
	var out []Annotation
	for _, rule := range rules {
		if ann, ok := MatchMultiCondition(rule, identity, aliases); ok {
			out = append(out, ann)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
