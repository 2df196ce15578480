package lombada

import (
	"fmt"
	"math"
	"strconv"

	"lombada-bot/internal/catalog"
)

// Binding holds the independent binding checkboxes.
type Binding struct {
	CaseBound bool `json:"cartonado"`
	Milled    bool `json:"fresado"`
	Sewn      bool `json:"costurado"`
}

func (b Binding) Any() bool {
	return b.CaseBound || b.Milled || b.Sewn
}

// Offset and description are picked by tier, not summed: Cartonado wins over
// Costurado, which wins over Fresado. With all three set only the Cartonado
// offset applies although the description names every binding.
func (b Binding) Offset() float64 {
	switch {
	case b.CaseBound:
		return 4
	case b.Sewn:
		return 1
	default:
		return 0
	}
}

func (b Binding) Description() string {
	switch {
	case b.CaseBound:
		d := "Cartonado"
		if b.Milled {
			d += " e Fresado"
		}
		if b.Sewn {
			d += " e Costurado"
		}
		return d
	case b.Sewn:
		d := "Costurado"
		if b.Milled {
			d += " e Fresado"
		}
		return d
	default:
		return "Fresado"
	}
}

type Input struct {
	Paper   string
	Weight  string
	Pages   int
	Binding Binding
}

type Result struct {
	SpineWidthMM float64
	Description  string
}

func (r Result) String() string {
	return fmt.Sprintf("A lombada (%s) é: %s mm", r.Description, FormatMM(r.SpineWidthMM))
}

// Calculate computes pages / base divisor + binding offset. Validation runs
// in a fixed order: binding, then required fields, then catalog lookup.
func Calculate(c *catalog.Catalog, in Input) (Result, error) {
	if !in.Binding.Any() {
		return Result{}, ErrNoBinding
	}

	if in.Paper == "" || in.Weight == "" || in.Pages <= 0 {
		return Result{}, ErrIncompleteForm
	}

	weight, ok := c.Weight(in.Paper, in.Weight)
	if !ok {
		return Result{}, ErrBaseNotFound
	}

	width := float64(in.Pages)/weight.BaseDivisor + in.Binding.Offset()

	return Result{
		SpineWidthMM: Round1(width),
		Description:  in.Binding.Description(),
	}, nil
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func FormatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
