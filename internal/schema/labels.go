package schema

import (
	"fmt"
	"strings"
)

// Disease is the stable integer class code used in datasets and predictions.
type Disease int

const (
	Thalassemia Disease = iota
	Hemophilia
	BreastCancer
	SickleCellAnemia
	CysticFibrosis

	// NumDiseases is the number of classes a classifier distinguishes.
	NumDiseases = int(CysticFibrosis) + 1
)

// LabelTable maps disease codes to names and back. It is built once and
// never mutated, so it may be shared freely.
type LabelTable struct {
	names  []string
	byName map[string]Disease
}

// NewLabelTable builds a table from names indexed by code.
func NewLabelTable(names []string) (*LabelTable, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("label table: no labels")
	}
	t := &LabelTable{
		names:  make([]string, len(names)),
		byName: make(map[string]Disease, len(names)),
	}
	for code, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("label table: empty name for code %d", code)
		}
		if prev, dup := t.byName[key]; dup {
			return nil, fmt.Errorf("label table: %q used by codes %d and %d", name, prev, code)
		}
		t.names[code] = name
		t.byName[key] = Disease(code)
	}
	return t, nil
}

// DefaultLabels returns the five-class table shared by every component.
func DefaultLabels() *LabelTable {
	t, err := NewLabelTable([]string{
		Thalassemia:      "Thalassemia",
		Hemophilia:       "Hemophilia",
		BreastCancer:     "Breast Cancer",
		SickleCellAnemia: "Sickle Cell Anemia",
		CysticFibrosis:   "Cystic Fibrosis",
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Len is the number of classes.
func (t *LabelTable) Len() int { return len(t.names) }

// Diseases lists every code in ascending order.
func (t *LabelTable) Diseases() []Disease {
	out := make([]Disease, len(t.names))
	for i := range out {
		out[i] = Disease(i)
	}
	return out
}

// Valid reports whether d is a known code.
func (t *LabelTable) Valid(d Disease) bool {
	return d >= 0 && int(d) < len(t.names)
}

// Name returns the display name of d.
func (t *LabelTable) Name(d Disease) (string, bool) {
	if !t.Valid(d) {
		return "", false
	}
	return t.names[d], true
}

// Code looks up a disease by name, case-insensitively.
func (t *LabelTable) Code(name string) (Disease, bool) {
	d, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}
