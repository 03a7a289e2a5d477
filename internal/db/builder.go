package db

import "strconv"

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition on a collection.
func NewIndex(collection string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{Collection: collection},
	}
}

// Key appends a key of the given kind.
func (b *IndexBuilder) Key(field string, kind IndexKind) *IndexBuilder {
	b.def.Keys = append(b.def.Keys, IndexKey{Field: field, Kind: kind})
	return b
}

// Asc appends an ascending key.
func (b *IndexBuilder) Asc(field string) *IndexBuilder { return b.Key(field, IndexAsc) }

// Desc appends a descending key.
func (b *IndexBuilder) Desc(field string) *IndexBuilder { return b.Key(field, IndexDesc) }

// Geo2DSphere appends a spherical geospatial key.
func (b *IndexBuilder) Geo2DSphere(field string) *IndexBuilder { return b.Key(field, Index2DSphere) }

// Hashed appends a hashed key.
func (b *IndexBuilder) Hashed(field string) *IndexBuilder { return b.Key(field, IndexHashed) }

// Text appends one text key per field.
func (b *IndexBuilder) Text(fields ...string) *IndexBuilder {
	for _, f := range fields {
		b.Key(f, IndexText)
	}
	return b
}

// Named sets an explicit index name.
func (b *IndexBuilder) Named(name string) *IndexBuilder {
	b.def.Name = name
	return b
}

// Unique marks the index unique.
func (b *IndexBuilder) Unique() *IndexBuilder {
	b.def.Unique = true
	return b
}

// Sparse marks the index sparse.
func (b *IndexBuilder) Sparse() *IndexBuilder {
	b.def.Sparse = true
	return b
}

// TTL sets expireAfterSeconds.
func (b *IndexBuilder) TTL(seconds int32) *IndexBuilder {
	b.def.ExpireAfterSeconds = &seconds
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Keys = append([]IndexKey(nil), b.def.Keys...)
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation resembling the createIndexes command.
func (idx *IndexDefinition) String() string {
	s := "createIndexes " + idx.Collection + " " + KeyPatternString(idx.Keys) + " name=" + idx.EffectiveName()
	if idx.Unique {
		s += " unique"
	}
	if idx.Sparse {
		s += " sparse"
	}
	if idx.ExpireAfterSeconds != nil {
		s += " expireAfterSeconds=" + strconv.Itoa(int(*idx.ExpireAfterSeconds))
	}
	return s
}
