package db

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// IndexKind is the per-field value of an index key pattern.
type IndexKind string

const (
	// IndexAsc is an ascending key.
	IndexAsc IndexKind = "1"
	// IndexDesc is a descending key.
	IndexDesc IndexKind = "-1"
	// Index2DSphere is a spherical geospatial key.
	Index2DSphere IndexKind = "2dsphere"
	// IndexText is a text key.
	IndexText IndexKind = "text"
	// IndexHashed is a hashed key.
	IndexHashed IndexKind = "hashed"
)

// IndexKey is one field of a key pattern.
type IndexKey struct {
	Field string
	Kind  IndexKind
}

// IndexDefinition is a complete index definition used by createIndexes.
type IndexDefinition struct {
	Collection         string
	Name               string
	Keys               []IndexKey
	Unique             bool
	Sparse             bool
	ExpireAfterSeconds *int32
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Collection == "" {
		return errors.New("collection is required")
	}
	if len(idx.Keys) == 0 {
		return errors.New("at least one key is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Keys {
		k := &idx.Keys[i]
		if k.Field == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[k.Field] {
			return errors.New("duplicate field name: " + k.Field)
		}
		seen[k.Field] = true

		switch k.Kind {
		case IndexAsc, IndexDesc, Index2DSphere, IndexText, IndexHashed:
		default:
			return errors.New("unsupported kind for field " + k.Field + ": " + string(k.Kind))
		}
	}

	if idx.ExpireAfterSeconds != nil {
		if *idx.ExpireAfterSeconds < 0 {
			return errors.New("expireAfterSeconds must not be negative")
		}
		if len(idx.Keys) != 1 || (idx.Keys[0].Kind != IndexAsc && idx.Keys[0].Kind != IndexDesc) {
			return errors.New("expireAfterSeconds requires a single ascending or descending key")
		}
	}

	return nil
}

// DefaultName is the name the server assigns when none is given.
func (idx *IndexDefinition) DefaultName() string {
	parts := make([]string, 0, len(idx.Keys)*2)
	for _, k := range idx.Keys {
		parts = append(parts, k.Field, string(k.Kind))
	}
	return strings.Join(parts, "_")
}

// EffectiveName returns Name, or DefaultName when Name is empty.
func (idx *IndexDefinition) EffectiveName() string {
	if idx.Name != "" {
		return idx.Name
	}
	return idx.DefaultName()
}

// IndexInfo describes a live index as reported by listIndexes.
// Text keys are expanded from the server's weights document, one key per field.
type IndexInfo struct {
	Name               string
	Keys               []IndexKey
	Unique             bool
	Sparse             bool
	ExpireAfterSeconds *int32
}

// Equivalent reports whether the live index has the same key pattern and options.
// Names are not compared. Text fields compare as an unordered set.
func (idx *IndexDefinition) Equivalent(info IndexInfo) bool {
	return idx.SameKeys(info) &&
		idx.Unique == info.Unique &&
		idx.Sparse == info.Sparse &&
		equalTTL(idx.ExpireAfterSeconds, info.ExpireAfterSeconds)
}

// SameKeys reports whether the live index has the same key pattern.
func (idx *IndexDefinition) SameKeys(info IndexInfo) bool {
	a, b := keySignature(idx.Keys), keySignature(info.Keys)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// keySignature renders keys as tokens; all text keys collapse into one token
// placed where the first text key appears.
func keySignature(keys []IndexKey) []string {
	var textFields []string
	textPos := -1
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Kind == IndexText {
			if textPos < 0 {
				textPos = len(out)
				out = append(out, "")
			}
			textFields = append(textFields, k.Field)
			continue
		}
		out = append(out, k.Field+":"+string(k.Kind))
	}
	if textPos >= 0 {
		sort.Strings(textFields)
		out[textPos] = "text(" + strings.Join(textFields, ",") + ")"
	}
	return out
}

func equalTTL(a, b *int32) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// KeyPatternString renders keys as {field: kind, ...}.
func KeyPatternString(keys []IndexKey) string {
	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.Field)
		b.WriteString(": ")
		b.WriteString(string(k.Kind))
	}
	b.WriteString("}")
	return b.String()
}
