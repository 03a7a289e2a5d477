package index

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the per-field index type inside a key pattern.
type Kind string

const (
	// Ascending is a plain ascending key (1).
	Ascending Kind = "1"
	// Descending is a plain descending key (-1).
	Descending Kind = "-1"
	// Geo2DSphere is a spherical geospatial key.
	Geo2DSphere Kind = "2dsphere"
	// Text is a full-text key; several text keys form one text index.
	Text Kind = "text"
	// Hashed is a hashed key.
	Hashed Kind = "hashed"
)

// IsValid checks if the kind is supported.
func (k Kind) IsValid() bool {
	switch k {
	case Ascending, Descending, Geo2DSphere, Text, Hashed:
		return true
	}
	return false
}

// IsOrdered reports whether the kind is a plain ascending/descending key.
func (k Kind) IsOrdered() bool {
	return k == Ascending || k == Descending
}

// ParseKind accepts the catalog spellings of a key kind: 1, -1, "asc", "desc",
// "2dsphere", "text", "hashed".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "asc", "ascending":
		return Ascending, nil
	case "-1", "desc", "descending":
		return Descending, nil
	case "2dsphere":
		return Geo2DSphere, nil
	case "text":
		return Text, nil
	case "hashed":
		return Hashed, nil
	}
	return "", fmt.Errorf("unknown index kind %q", s)
}

// Key is one field of an ordered key pattern.
type Key struct {
	Field string
	Kind  Kind
}

// Options are the per-index options carried explicitly by each spec.
type Options struct {
	Name       string
	Unique     bool
	Sparse     bool
	TTLSeconds *int32
}

// TTL returns a TTL option value.
func TTL(seconds int32) *int32 { return &seconds }

// Spec is a required index on one collection (immutable value object).
type Spec struct {
	collection string
	keys       []Key
	opts       Options
}

// New validates and creates a Spec.
func New(collection string, keys []Key, opts Options) (Spec, error) {
	if err := validate(collection, keys, opts); err != nil {
		return Spec{}, err
	}
	s := Spec{
		collection: collection,
		keys:       append([]Key(nil), keys...),
		opts:       copyOptions(opts),
	}
	return s, nil
}

// MustNew calls New and panics on error. Intended for static catalogs.
func MustNew(collection string, keys []Key, opts Options) Spec {
	s, err := New(collection, keys, opts)
	if err != nil {
		panic(err)
	}
	return s
}

func validate(collection string, keys []Key, opts Options) error {
	if collection == "" {
		return errors.New("collection is required")
	}
	if strings.HasPrefix(collection, "system.") || strings.ContainsAny(collection, "$\x00") {
		return fmt.Errorf("invalid collection name %q", collection)
	}
	if len(keys) == 0 {
		return errors.New("key pattern must not be empty")
	}
	seen := make(map[string]bool, len(keys))
	hasHashed := false
	for i, k := range keys {
		if k.Field == "" {
			return fmt.Errorf("field name is required at position %d", i)
		}
		if strings.HasPrefix(k.Field, "$") {
			return fmt.Errorf("field %q must not start with $", k.Field)
		}
		if seen[k.Field] {
			return fmt.Errorf("duplicate field %q in key pattern", k.Field)
		}
		seen[k.Field] = true
		if !k.Kind.IsValid() {
			return fmt.Errorf("field %q has unsupported kind %q", k.Field, k.Kind)
		}
		if k.Kind == Hashed {
			hasHashed = true
		}
	}
	if opts.Unique && hasHashed {
		return errors.New("hashed indexes cannot be unique")
	}
	if opts.TTLSeconds != nil {
		if *opts.TTLSeconds < 0 {
			return errors.New("ttl seconds must not be negative")
		}
		if len(keys) != 1 || !keys[0].Kind.IsOrdered() {
			return errors.New("ttl requires a single ascending or descending field")
		}
	}
	return nil
}

func copyOptions(o Options) Options {
	if o.TTLSeconds != nil {
		o.TTLSeconds = TTL(*o.TTLSeconds)
	}
	return o
}

// Collection returns the target collection name.
func (s Spec) Collection() string { return s.collection }

// Keys returns a copy of the ordered key pattern.
func (s Spec) Keys() []Key { return append([]Key(nil), s.keys...) }

// Options returns a copy of the index options.
func (s Spec) Options() Options { return copyOptions(s.opts) }

// Name returns the explicit index name, or the store's default name for the key pattern.
func (s Spec) Name() string {
	if s.opts.Name != "" {
		return s.opts.Name
	}
	return s.DefaultName()
}

// DefaultName builds the conventional name: field_1_other_-1, title_text_body_text.
func (s Spec) DefaultName() string {
	parts := make([]string, 0, len(s.keys)*2)
	for _, k := range s.keys {
		parts = append(parts, k.Field, string(k.Kind))
	}
	return strings.Join(parts, "_")
}

// String renders the index spec as collection {field: kind, ...}.
func (s Spec) String() string {
	var b strings.Builder
	b.WriteString(s.collection)
	b.WriteString(" {")
	for i, k := range s.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.Field)
		b.WriteString(": ")
		b.WriteString(string(k.Kind))
	}
	b.WriteString("}")
	if s.opts.Unique {
		b.WriteString(" unique")
	}
	if s.opts.Sparse {
		b.WriteString(" sparse")
	}
	if s.opts.TTLSeconds != nil {
		fmt.Fprintf(&b, " ttl=%ds", *s.opts.TTLSeconds)
	}
	return b.String()
}
