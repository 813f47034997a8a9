// Package classify maps a free-text item classification onto a department
// bucket, a collection remap table and the washing-code labels.
package classify

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"pepco/internal"
)

//go:embed data/tables.yaml
var defaultTables []byte

type Type string

const None Type = ""

type Phrase struct {
	Phrase     string `yaml:"phrase"`
	Type       Type   `yaml:"type"`
	Department string `yaml:"department"`
	DeptCode   string `yaml:"dept_code"`
	Suffix     string `yaml:"suffix"`
}

type Remap struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type WashingCode struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

type Tables struct {
	Classifications    []Phrase         `yaml:"classifications"`
	Collections        map[Type][]Remap `yaml:"collections"`
	WashingCodes       []WashingCode    `yaml:"washing_codes"`
	DefaultWashingCode string           `yaml:"default_washing_code"`
}

// Load decodes and checks a table document.
func Load(r io.Reader) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode classification tables: %w", err)
	}
	seen := map[string]bool{}
	for _, p := range t.Classifications {
		key := strings.ToLower(strings.TrimSpace(p.Phrase))
		if key == "" || p.Type == None {
			return nil, fmt.Errorf("classification entry %q has no phrase or type", p.Phrase)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate classification phrase %q", p.Phrase)
		}
		seen[key] = true
	}
	if _, ok := t.WashingLabel(t.DefaultWashingCode); !ok {
		return nil, fmt.Errorf("default washing code %q is not defined", t.DefaultWashingCode)
	}
	return &t, nil
}

var defaultOnce = sync.OnceValue(func() *Tables {
	t, err := Load(bytes.NewReader(defaultTables))
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the built-in tables.
func Default() *Tables {
	return defaultOnce()
}

// Match returns the first phrase contained in the classification, ignoring case.
func (t *Tables) Match(itemClass string) (Phrase, bool) {
	if !internal.Resolved(itemClass) {
		return Phrase{}, false
	}
	ic := strings.ToLower(itemClass)
	for _, p := range t.Classifications {
		if strings.Contains(ic, strings.ToLower(p.Phrase)) {
			return p, true
		}
	}
	return Phrase{}, false
}

func (t *Tables) TypeOf(itemClass string) Type {
	p, _ := t.Match(itemClass)
	return p.Type
}

// DepartmentLabel is the department offered as the operator default.
func (t *Tables) DepartmentLabel(itemClass string) string {
	p, _ := t.Match(itemClass)
	return p.Department
}

// DeptCode is the department group written to the export row.
func (t *Tables) DeptCode(itemClass string) string {
	p, _ := t.Match(itemClass)
	return p.DeptCode
}

// RemapCollection replaces a working collection name with its published
// name. Keys are tried in table order; the first substring hit wins.
func (t *Tables) RemapCollection(collection, itemClass string) string {
	if !internal.Resolved(collection) {
		return collection
	}
	table, ok := t.Collections[t.TypeOf(itemClass)]
	if !ok {
		return collection
	}
	upper := strings.ToUpper(collection)
	for _, r := range table {
		if strings.Contains(upper, strings.ToUpper(r.From)) {
			return r.To
		}
	}
	return collection
}

// TagCollection appends the boy/girl age-group suffix. Unresolved
// collections are left untouched.
func (t *Tables) TagCollection(collection, itemClass string) string {
	if !internal.Resolved(collection) {
		return collection
	}
	p, ok := t.Match(itemClass)
	if !ok || p.Suffix == "" {
		return collection
	}
	return collection + " " + p.Suffix
}

func (t *Tables) WashingLabel(key string) (string, bool) {
	key = strings.TrimSpace(key)
	for _, w := range t.WashingCodes {
		if w.Key == key {
			return w.Label, true
		}
	}
	return "", false
}

func (t *Tables) WashingKeys() []string {
	keys := make([]string, 0, len(t.WashingCodes))
	for _, w := range t.WashingCodes {
		keys = append(keys, w.Key)
	}
	return keys
}
