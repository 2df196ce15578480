package lombada

type Kind int

const (
	KindValidation Kind = iota + 1
	KindLookup
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// Error is a calculation failure. Its text is shown to the user as is.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	ErrNoBinding = &Error{
		Kind: KindValidation,
		Msg:  "Selecione pelo menos um tipo de encadernação.",
	}
	ErrIncompleteForm = &Error{
		Kind: KindValidation,
		Msg:  "Por favor, preencha todos os campos e insira uma quantidade de páginas válida.",
	}
	ErrBaseNotFound = &Error{
		Kind: KindLookup,
		Msg:  "Não foi possível encontrar o valor base da lombada para a seleção. Verifique seus dados.",
	}
)
