// Package container implements the generic, format-neutral data container
// that components are serialized into before they reach host persistence.
package container

import (
	"encoding"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	enc "github.com/zeusync/reveries/pkg/encoding"
)

// Query addresses a value inside a Container.
type Query string

// ContentVersion is the reserved key holding the version of the data shape.
const ContentVersion Query = "ContentVersion"

var _ enc.Serializable = (*Container)(nil)

// Container is a flat key/value view. Values are kept as set; conversion
// happens in the typed getters so that containers decoded from YAML or JSON
// (where numbers, ids and texts come back as plain scalars) read the same
// as freshly built ones.
type Container struct {
	values map[Query]any
	format enc.Format
}

func New() *Container {
	return &Container{values: make(map[Query]any)}
}

// FromMap builds a Container over a decoded document.
func FromMap(m map[string]any) *Container {
	c := New()
	for k, v := range m {
		c.values[Query(k)] = v
	}
	return c
}

// WithFormat selects the byte form used by Serialize and Deserialize.
func (c *Container) WithFormat(f enc.Format) *Container {
	c.format = f
	return c
}

func (c *Container) Set(key Query, value any) *Container {
	c.values[key] = value
	return c
}

func (c *Container) Get(key Query) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *Container) Remove(key Query) bool {
	_, ok := c.values[key]
	delete(c.values, key)
	return ok
}

// Contains reports whether every key is present.
func (c *Container) Contains(keys ...Query) bool {
	for _, k := range keys {
		if _, ok := c.values[k]; !ok {
			return false
		}
	}
	return true
}

func (c *Container) Keys() []Query {
	keys := make([]Query, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (c *Container) Len() int { return len(c.values) }

func (c *Container) Copy() *Container {
	cp := &Container{values: make(map[Query]any, len(c.values)), format: c.format}
	for k, v := range c.values {
		cp.values[k] = v
	}
	return cp
}

func (c *Container) Int(key Query) (int, bool) {
	v, ok := c.values[key]
	if !ok {
		return 0, false
	}
	switch tv := v.(type) {
	case int:
		return tv, true
	case int8:
		return int(tv), true
	case int16:
		return int(tv), true
	case int32:
		return int(tv), true
	case int64:
		return int(tv), true
	case uint:
		return int(tv), true
	case uint8:
		return int(tv), true
	case uint16:
		return int(tv), true
	case uint32:
		return int(tv), true
	case uint64:
		return int(tv), true
	case float64:
		if tv != math.Trunc(tv) {
			return 0, false
		}
		return int(tv), true
	case float32:
		if float64(tv) != math.Trunc(float64(tv)) {
			return 0, false
		}
		return int(tv), true
	default:
		return 0, false
	}
}

func (c *Container) Float64(key Query) (float64, bool) {
	v, ok := c.values[key]
	if !ok {
		return 0, false
	}
	switch tv := v.(type) {
	case float64:
		return tv, true
	case float32:
		return float64(tv), true
	case int:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case int32:
		return float64(tv), true
	case uint64:
		return float64(tv), true
	case uint32:
		return float64(tv), true
	default:
		return 0, false
	}
}

func (c *Container) Bool(key Query) (bool, bool) {
	v, ok := c.values[key].(bool)
	return v, ok
}

func (c *Container) String(key Query) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	switch tv := v.(type) {
	case string:
		return tv, true
	case encoding.TextMarshaler:
		b, err := tv.MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	default:
		return "", false
	}
}

func (c *Container) UUID(key Query) (uuid.UUID, bool) {
	v, ok := c.values[key]
	if !ok {
		return uuid.Nil, false
	}
	switch tv := v.(type) {
	case uuid.UUID:
		return tv, true
	case string:
		id, err := uuid.Parse(tv)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	default:
		return uuid.Nil, false
	}
}

// StringList reads a list of strings. Elements implementing
// encoding.TextMarshaler are converted through it.
func (c *Container) StringList(key Query) ([]string, bool) {
	v, ok := c.values[key]
	if !ok {
		return nil, false
	}
	switch tv := v.(type) {
	case []string:
		out := make([]string, len(tv))
		copy(out, tv)
		return out, true
	case []any:
		out := make([]string, 0, len(tv))
		for _, e := range tv {
			s, ok := scalarString(e)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Decode reads key into dst through its text form.
func (c *Container) Decode(key Query, dst encoding.TextUnmarshaler) bool {
	v, ok := c.values[key]
	if !ok {
		return false
	}
	s, ok := scalarString(v)
	if !ok {
		return false
	}
	return dst.UnmarshalText([]byte(s)) == nil
}

// Map returns a plain document: text marshalers become strings, nested
// containers become maps.
func (c *Container) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[string(k)] = plain(v)
	}
	return out
}

func (c *Container) Serialize() ([]byte, error) {
	b, err := enc.Marshal(c.format, c.Map())
	if err != nil {
		return nil, fmt.Errorf("serialize container: %w", err)
	}
	return b, nil
}

// Deserialize replaces the content of c with the decoded document.
func (c *Container) Deserialize(b []byte) error {
	var m map[string]any
	if err := enc.Unmarshal(c.format, b, &m); err != nil {
		return fmt.Errorf("deserialize container: %w", err)
	}
	c.values = make(map[Query]any, len(m))
	for k, v := range m {
		c.values[Query(k)] = v
	}
	return nil
}

func scalarString(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case encoding.TextMarshaler:
		b, err := tv.MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	default:
		return "", false
	}
}

func plain(v any) any {
	switch tv := v.(type) {
	case *Container:
		return tv.Map()
	case encoding.TextMarshaler:
		if s, ok := scalarString(tv); ok {
			return s
		}
		return v
	case []string:
		out := make([]any, len(tv))
		for i, s := range tv {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}
