package catalog

import (
	"fmt"

	"go.uber.org/multierr"
)

// WeightEntry is one selectable paper weight. Label is matched verbatim,
// never numerically.
type WeightEntry struct {
	Label       string  `json:"valor" yaml:"valor"`
	BaseDivisor float64 `json:"valor_base_lombada" yaml:"valor_base_lombada"`
}

type PaperType struct {
	Name    string        `json:"nome" yaml:"nome"`
	Weights []WeightEntry `json:"gramaturas" yaml:"gramaturas"`
}

// Catalog is the read-only list of paper types. It is built once at startup
// and shared by every form surface; nothing mutates it after New.
type Catalog struct {
	papers []PaperType
}

func New(papers []PaperType) *Catalog {
	return &Catalog{papers: clonePapers(papers)}
}

// Papers returns the paper types in the order they were loaded.
func (c *Catalog) Papers() []PaperType {
	if c == nil {
		return nil
	}
	return clonePapers(c.papers)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.papers)
}

// Paper finds a paper type by exact name. The first match wins.
func (c *Catalog) Paper(name string) (PaperType, bool) {
	if c == nil || name == "" {
		return PaperType{}, false
	}
	for _, p := range c.papers {
		if p.Name == name {
			return clonePaper(p), true
		}
	}
	return PaperType{}, false
}

// PaperAt is used by surfaces that cannot carry the full name around
// (Telegram callback data is limited to 64 bytes).
func (c *Catalog) PaperAt(i int) (PaperType, bool) {
	if c == nil || i < 0 || i >= len(c.papers) {
		return PaperType{}, false
	}
	return clonePaper(c.papers[i]), true
}

// Weight resolves a weight entry within a paper. An entry with a zero
// divisor is reported as missing.
func (c *Catalog) Weight(paper, label string) (WeightEntry, bool) {
	p, ok := c.Paper(paper)
	if !ok || label == "" {
		return WeightEntry{}, false
	}
	for _, w := range p.Weights {
		if w.Label == label {
			if w.BaseDivisor == 0 {
				return WeightEntry{}, false
			}
			return w, true
		}
	}
	return WeightEntry{}, false
}

// Check reports data problems that do not prevent the catalog from being
// used. Lookups keep working; a bad entry only fails when it is selected.
func (c *Catalog) Check() error {
	if c == nil {
		return nil
	}

	var err error
	seen := make(map[string]bool, len(c.papers))
	for i, p := range c.papers {
		if p.Name == "" {
			err = multierr.Append(err, fmt.Errorf("paper #%d has empty name", i))
			continue
		}
		if seen[p.Name] {
			err = multierr.Append(err, fmt.Errorf("paper %q is listed more than once", p.Name))
		}
		seen[p.Name] = true

		labels := make(map[string]bool, len(p.Weights))
		for _, w := range p.Weights {
			if labels[w.Label] {
				err = multierr.Append(err, fmt.Errorf("paper %q: weight %q is listed more than once", p.Name, w.Label))
			}
			labels[w.Label] = true
			if w.BaseDivisor <= 0 {
				err = multierr.Append(err, fmt.Errorf("paper %q: weight %q has non-positive base divisor %v", p.Name, w.Label, w.BaseDivisor))
			}
		}
	}
	return err
}

func clonePapers(papers []PaperType) []PaperType {
	if papers == nil {
		return nil
	}
	out := make([]PaperType, len(papers))
	for i, p := range papers {
		out[i] = clonePaper(p)
	}
	return out
}

func clonePaper(p PaperType) PaperType {
	weights := make([]WeightEntry, len(p.Weights))
	copy(weights, p.Weights)
	return PaperType{Name: p.Name, Weights: weights}
}
