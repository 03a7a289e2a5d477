package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/idxadvisor/internal/domain/index"
)

type fileCatalog struct {
	Collections []fileEntry `yaml:"collections"`
}

type fileEntry struct {
	Collection string      `yaml:"collection"`
	Indexes    []fileIndex `yaml:"indexes"`
}

type fileIndex struct {
	KeyPattern yaml.Node    `yaml:"key_pattern"`
	Options    *fileOptions `yaml:"options,omitempty"`
}

type fileOptions struct {
	Name       string `yaml:"name,omitempty"`
	Unique     bool   `yaml:"unique,omitempty"`
	Sparse     bool   `yaml:"sparse,omitempty"`
	TTLSeconds *int32 `yaml:"ttl_seconds,omitempty"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog. Key pattern mapping order is kept as index key order.
func Parse(data []byte) (*Catalog, error) {
	var f fileCatalog
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	entries := make([]Entry, 0, len(f.Collections))
	for _, fe := range f.Collections {
		e := Entry{Collection: fe.Collection}
		for i, fi := range fe.Indexes {
			keys, err := decodeKeyPattern(&fi.KeyPattern)
			if err != nil {
				return nil, fmt.Errorf("%s index %d: %w", fe.Collection, i, err)
			}
			var opts index.Options
			if fi.Options != nil {
				opts = index.Options{
					Name:       fi.Options.Name,
					Unique:     fi.Options.Unique,
					Sparse:     fi.Options.Sparse,
					TTLSeconds: fi.Options.TTLSeconds,
				}
			}
			s, err := index.New(fe.Collection, keys, opts)
			if err != nil {
				return nil, fmt.Errorf("%s index %d: %w", fe.Collection, i, err)
			}
			e.Specs = append(e.Specs, s)
		}
		entries = append(entries, e)
	}
	return New(entries...)
}

func decodeKeyPattern(n *yaml.Node) ([]index.Key, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("key_pattern must be a mapping")
	}
	keys := make([]index.Key, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		field, val := n.Content[i], n.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("key_pattern.%s must be a scalar", field.Value)
		}
		kind, err := index.ParseKind(val.Value)
		if err != nil {
			return nil, fmt.Errorf("key_pattern.%s: %w", field.Value, err)
		}
		keys = append(keys, index.Key{Field: field.Value, Kind: kind})
	}
	return keys, nil
}

// Marshal encodes the catalog in the same YAML shape Parse reads.
func Marshal(c *Catalog) ([]byte, error) {
	f := fileCatalog{Collections: make([]fileEntry, 0, len(c.entries))}
	for _, e := range c.entries {
		fe := fileEntry{Collection: e.Collection}
		for _, s := range e.Specs {
			fe.Indexes = append(fe.Indexes, encodeSpec(s))
		}
		f.Collections = append(f.Collections, fe)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeSpec(s index.Spec) fileIndex {
	kp := yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for _, k := range s.Keys() {
		val := &yaml.Node{Kind: yaml.ScalarNode, Value: string(k.Kind)}
		if k.Kind.IsOrdered() {
			val.Tag = "!!int"
		} else {
			val.Tag = "!!str"
		}
		kp.Content = append(kp.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.Field},
			val,
		)
	}

	fi := fileIndex{KeyPattern: kp}
	o := s.Options()
	if o.Name != "" || o.Unique || o.Sparse || o.TTLSeconds != nil {
		fi.Options = &fileOptions{
			Name:       o.Name,
			Unique:     o.Unique,
			Sparse:     o.Sparse,
			TTLSeconds: o.TTLSeconds,
		}
	}
	return fi
}
