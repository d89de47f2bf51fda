package db

import (
	"errors"
	"strconv"
)

// StorageType defines the record storage backend for FT indexes.
type StorageType string

// StorageHash stores indexed records as Redis hashes.
const StorageHash StorageType = "HASH"

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldTag is an exact-match tag field.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldText is a full-text field.
	IndexFieldText
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Type == IndexFieldTag && len(f.TagSeparator) > 1 {
			return errors.New("tag separator must be a single character: " + f.Name)
		}
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
