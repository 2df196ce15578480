package bot

const (
	StepPaperSelection   = "paper_selection"
	StepWeightSelection  = "weight_selection"
	StepPageCount        = "page_count"
	StepBindingSelection = "binding_selection"
)

// callback data prefixes; Telegram limits callback data to 64 bytes, so
// papers and weights travel as indexes into the catalog
const (
	CallbackPaper     = "papel"
	CallbackWeight    = "gram"
	CallbackBinding   = "enc"
	CallbackCalculate = "calcular"
	CallbackRestart   = "novo"
)

const (
	BindingCaseBound = "cartonado"
	BindingMilled    = "fresado"
	BindingSewn      = "costurado"
)

const (
	ButtonCalculate = "🧮 Calcular"
	ButtonRestart   = "🔁 Nova lombada"
	checkedMark     = "✅"
	uncheckedMark   = "⬜"
)

const (
	actionCalculate = "calculate"
)
