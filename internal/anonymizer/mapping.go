package anonymizer

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Mapping is the insertion-ordered, bidirectional tag↔value table produced
// by anonymization and consumed by deanonymization. It is the only state a
// caller must keep to reverse an anonymization; the engine holds no copy.
//
// Tags are unique. Values may repeat when distinct entities carry the same
// text: the tag, not the value, is the join key.
type Mapping struct {
	tags   []string
	values map[string]string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]string)}
}

// Add records a tag→value pair. The pair is append-only: re-registering an
// existing tag is a programming error and is rejected.
func (m *Mapping) Add(tag, value string) error {
	if _, exists := m.values[tag]; exists {
		return fmt.Errorf("tag %q already registered", tag)
	}
	m.tags = append(m.tags, tag)
	m.values[tag] = value
	return nil
}

// Value returns the original value for tag.
func (m *Mapping) Value(tag string) (string, bool) {
	v, ok := m.values[tag]
	return v, ok
}

// TagFor returns the first tag registered for value, in insertion order.
func (m *Mapping) TagFor(value string) (string, bool) {
	for _, tag := range m.tags {
		if m.values[tag] == value {
			return tag, true
		}
	}
	return "", false
}

// HasValue reports whether value is already registered under any tag.
func (m *Mapping) HasValue(value string) bool {
	_, ok := m.TagFor(value)
	return ok
}

// Len returns the number of registered pairs.
func (m *Mapping) Len() int {
	return len(m.tags)
}

// Tags returns the tags in insertion order.
func (m *Mapping) Tags() []string {
	out := make([]string, len(m.tags))
	copy(out, m.tags)
	return out
}

// TagsByLength returns the tags sorted longest first, ties broken
// alphabetically. Restoration must process NOM10 before NOM1 so that the
// shorter tag never clips the longer one. The wire format carries no order,
// so the sort is recomputed here rather than trusted from the producer.
func (m *Mapping) TagsByLength() []string {
	out := m.Tags()
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// MarshalJSON encodes the mapping as a flat {tag: value} object, the wire
// format shared with deanonymization callers.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.values)
}

// UnmarshalJSON decodes the flat wire object. Insertion order is not part
// of the wire contract; tags are loaded in sorted order for determinism.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	raw := make(map[string]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.tags = m.tags[:0]
	m.values = make(map[string]string, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.tags = append(m.tags, k)
		m.values[k] = raw[k]
	}
	return nil
}
