package encoding

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Serializable provides a clean, simple interface for serializing and deserializing values.
type Serializable interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// Format selects the byte representation used by Marshal and Unmarshal.
type Format uint8

const (
	FormatYAML Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

func Marshal(f Format, v any) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatJSON:
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}
}

func Unmarshal(f Format, b []byte, v any) error {
	switch f {
	case FormatYAML:
		return yaml.Unmarshal(b, v)
	case FormatJSON:
		return json.Unmarshal(b, v)
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}
