package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

type schemaFile struct {
	Classes []*Description `json:"classes"`
}

// LoadFile builds a registry from a JSON schema description file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from JSON schema description bytes.
func Parse(data []byte) (*Registry, error) {
	var file schemaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	reg := NewRegistry()
	for _, d := range file.Classes {
		if d.Class == "" || d.Table == "" {
			return nil, fmt.Errorf("schema class entry missing class or table name")
		}
		reg.Register(d)
	}
	return reg, nil
}
