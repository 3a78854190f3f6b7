// Package svxconf provides typed manipulation of svxlink.conf.
//
// A svxlink configuration is an INI file whose sections are distinguished
// by a TYPE option (TYPE=Net for remote nodes, TYPE=Multi for multi
// transmitters, and so on). Option names are case-insensitive on input but
// svxlink expects them upper-cased on disk, so every record in this package
// normalizes option names to upper case at the boundary and validates them
// against the allow-list of its section type.
package svxconf

import (
	"fmt"
	"strings"
)

// internalPrefix marks option keys reserved for internal use.
// Items never returns keys carrying this prefix.
const internalPrefix = "_"

// Item is one (name, value) pair of a section, in document order.
type Item struct {
	Name  string
	Value string
}

// Record is the read surface the Document needs to copy a typed section
// into the underlying INI store.
type Record interface {
	SectionName() string
	Items() []Item
}

// Section is an ordered key/value record scoped to one section type's
// option allow-list. Keys are stored upper-cased; lookups accept any case.
// Section is not safe for concurrent use.
type Section struct {
	typeName    string
	sectionName string
	valid       map[string]bool
	keys        []string
	values      map[string]string
}

// newSection builds a record for the given type. With nil data the record
// is seeded with TYPE=typeName; otherwise every pair is validated and
// inserted in order.
func newSection(typeName, sectionName string, validOptions []string, data []Item) (*Section, error) {
	s := &Section{
		typeName:    typeName,
		sectionName: sectionName,
		valid:       make(map[string]bool, len(validOptions)),
		values:      make(map[string]string),
	}
	for _, opt := range validOptions {
		s.valid[strings.ToUpper(opt)] = true
	}

	if data == nil {
		s.keys = append(s.keys, "TYPE")
		s.values["TYPE"] = typeName
		return s, nil
	}

	for _, item := range data {
		if err := s.Set(item.Name, item.Value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Type returns the section type tag (the value TYPE is seeded with).
func (s *Section) Type() string {
	return s.typeName
}

// SectionName returns the section identifier within the document.
func (s *Section) SectionName() string {
	return s.sectionName
}

// Get returns the value stored under key, looked up case-insensitively.
// The second return is false when the key is not set.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.values[strings.ToUpper(key)]
	return v, ok
}

// Set validates key against the allow-list and stores value under the
// upper-cased key. An existing key keeps its position; a new key is
// appended. Returns ValidationError for keys outside the allow-list,
// leaving the record unchanged.
func (s *Section) Set(key, value string) error {
	upper := strings.ToUpper(key)
	if !s.valid[upper] {
		return &ValidationError{Option: key, Section: s.sectionName}
	}

	if _, exists := s.values[upper]; !exists {
		s.keys = append(s.keys, upper)
	}
	s.values[upper] = value
	return nil
}

// HasOption reports whether key is set, matched case-insensitively.
func (s *Section) HasOption(key string) bool {
	_, ok := s.values[strings.ToUpper(key)]
	return ok
}

// Items returns the record's (name, value) pairs in insertion order,
// skipping keys reserved for internal use.
func (s *Section) Items() []Item {
	items := make([]Item, 0, len(s.keys))
	for _, k := range s.keys {
		if strings.HasPrefix(k, internalPrefix) {
			continue
		}
		items = append(items, Item{Name: k, Value: s.values[k]})
	}
	return items
}

// String identifies the record for diagnostics. Not used for persistence.
func (s *Section) String() string {
	return fmt.Sprintf("<svxlink-%s: %s>", s.typeName, s.sectionName)
}
