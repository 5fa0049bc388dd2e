package semantic

import "strings"

// AliasIndex maps normalized field-name variants (case-folded,
// underscore-stripped) to a canonical field name, so rule authors can refer
// to "ExecutableName", "executable-name", or "executable_name"
// interchangeably. Built once from a configuration-supplied alias catalog
// and treated as immutable thereafter.
type AliasIndex struct {
	canonical map[string]string // normalized form -> canonical name
}

// NewAliasIndex builds an index from a catalog mapping canonical field name
// to its known aliases.
func NewAliasIndex(catalog map[string][]string) *AliasIndex {
	idx := &AliasIndex{canonical: make(map[string]string)}
	for canon, aliases := range catalog {
		idx.canonical[normalizeFieldKey(canon)] = canon
		for _, alias := range aliases {
			idx.canonical[normalizeFieldKey(alias)] = canon
		}
	}
	return idx
}

// Resolve returns the canonical field name for fieldName, falling back to
// fieldName itself when no alias entry matches.
func (idx *AliasIndex) Resolve(fieldName string) string {
	if idx == nil {
		return fieldName
	}
	if canon, ok := idx.canonical[normalizeFieldKey(fieldName)]; ok {
		return canon
	}
	return fieldName
}

func normalizeFieldKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}
