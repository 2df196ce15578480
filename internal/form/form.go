// Package form models the calculator form independently of where it is
// rendered: selector contents, the submit entry point and the message it
// produces.
package form

import (
	"errors"
	"strconv"
	"strings"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/lombada"
)

const (
	PaperPlaceholder  = "Selecione o tipo de papel"
	WeightPlaceholder = "Selecione o tipo de Gramatura"
	NoWeights         = "Nenhuma gramatura disponível"
	CatalogLoadError  = "Erro ao carregar as opções de papel. Verifique o arquivo de dados."
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Message is the single output event of the form.
type Message struct {
	Severity Severity
	Text     string
	Result   *lombada.Result
}

func (m Message) IsError() bool {
	return m.Severity == SeverityError
}

type Option struct {
	Value    string
	Text     string
	Disabled bool
}

// Select is the full content of one dropdown. It is always rebuilt from
// scratch, never patched.
type Select struct {
	Options  []Option
	Disabled bool
}

// Choices returns the selectable options, skipping placeholders.
func (s Select) Choices() []Option {
	var out []Option
	for _, o := range s.Options {
		if !o.Disabled {
			out = append(out, o)
		}
	}
	return out
}

// PaperSelect fills the primary selector from the startup load result. On
// failure the selector stays empty and the static load error is returned.
func PaperSelect(res catalog.Result) (Select, *Message) {
	if !res.OK() {
		return Select{Disabled: true}, &Message{
			Severity: SeverityError,
			Text:     CatalogLoadError,
		}
	}

	papers := res.Catalog.Papers()
	sel := Select{Options: make([]Option, 0, len(papers)+1)}
	sel.Options = append(sel.Options, Option{Text: PaperPlaceholder, Disabled: true})
	for _, p := range papers {
		sel.Options = append(sel.Options, Option{Value: p.Name, Text: p.Name})
	}
	return sel, nil
}

// WeightSelect fills the dependent selector for the chosen paper.
func WeightSelect(c *catalog.Catalog, paper string) Select {
	p, ok := c.Paper(paper)
	if !ok || len(p.Weights) == 0 {
		return Select{
			Options:  []Option{{Text: NoWeights, Disabled: true}},
			Disabled: true,
		}
	}

	sel := Select{Options: make([]Option, 0, len(p.Weights)+1)}
	sel.Options = append(sel.Options, Option{Text: WeightPlaceholder, Disabled: true})
	for _, w := range p.Weights {
		sel.Options = append(sel.Options, Option{Value: w.Label, Text: WeightText(w.Label)})
	}
	return sel
}

// WeightText appends "g" to plain numeric labels ("56" -> "56g"); anything
// else ("65 2.0", "PAPER CREAMY 78G") is shown unchanged.
func WeightText(label string) string {
	if _, err := strconv.Atoi(label); err == nil {
		return label + "g"
	}
	return label
}

// Values is the raw form state as the user left it.
type Values struct {
	Paper   string
	Weight  string
	Pages   string
	Binding lombada.Binding
}

// ParsePages returns 0 for anything that is not a whole base-10 integer.
func ParsePages(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// Submit is the one entry point both surfaces call: compute from the current
// form state and turn the outcome into a message.
func Submit(c *catalog.Catalog, v Values) Message {
	res, err := lombada.Calculate(c, lombada.Input{
		Paper:   v.Paper,
		Weight:  v.Weight,
		Pages:   ParsePages(v.Pages),
		Binding: v.Binding,
	})
	if err != nil {
		return ErrorMessage(err)
	}

	return Message{
		Severity: SeveritySuccess,
		Text:     res.String(),
		Result:   &res,
	}
}

// ErrorMessage converts any error into a user-facing message. Calculation
// errors carry their own text.
func ErrorMessage(err error) Message {
	var calcErr *lombada.Error
	if errors.As(err, &calcErr) {
		return Message{Severity: SeverityError, Text: calcErr.Msg}
	}
	if errors.Is(err, catalog.ErrLoadFailed) {
		return Message{Severity: SeverityError, Text: CatalogLoadError}
	}
	return Message{Severity: SeverityError, Text: err.Error()}
}
