package db

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building a HASH-backed FT index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:        name,
			StorageType: StorageHash,
		},
	}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Tag adds a TAG field to the index.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: name,
		Type: IndexFieldTag,
	})
	return b
}

// TagWithOpts adds a TAG field with custom separator and case sensitivity.
func (b *IndexBuilder) TagWithOpts(name, separator string, caseSensitive bool) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:             name,
		Type:             IndexFieldTag,
		TagSeparator:     separator,
		TagCaseSensitive: caseSensitive,
	})
	return b
}

// Text adds a TEXT field to the index.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: name,
		Type: IndexFieldText,
	})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}
