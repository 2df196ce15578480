package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lombada-bot/internal/form"
)

const weightsPerRow = 3

// paperKeyboard lists one paper per row. Options keep catalog order, so the
// button index is the paper index.
func paperKeyboard(sel form.Select) tgbotapi.InlineKeyboardMarkup {
	choices := sel.Choices()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for i, o := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(o.Text, callbackData(CallbackPaper, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func weightKeyboard(sel form.Select) tgbotapi.InlineKeyboardMarkup {
	choices := sel.Choices()
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, o := range choices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(o.Text, callbackData(CallbackWeight, i)))
		if len(row) == weightsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func bindingKeyboard(state FormState) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			bindingButton("Cartonado", BindingCaseBound, state.CaseBound),
		),
		tgbotapi.NewInlineKeyboardRow(
			bindingButton("Fresado", BindingMilled, state.Milled),
		),
		tgbotapi.NewInlineKeyboardRow(
			bindingButton("Costurado", BindingSewn, state.Sewn),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ButtonCalculate, CallbackCalculate),
		),
	)
}

func bindingButton(text, binding string, checked bool) tgbotapi.InlineKeyboardButton {
	mark := uncheckedMark
	if checked {
		mark = checkedMark
	}
	return tgbotapi.NewInlineKeyboardButtonData(mark+" "+text, CallbackBinding+":"+binding)
}

func restartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ButtonRestart, CallbackRestart),
		),
	)
}

func callbackData(prefix string, index int) string {
	return fmt.Sprintf("%s:%d", prefix, index)
}
