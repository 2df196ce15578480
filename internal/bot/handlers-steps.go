package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lombada-bot/internal/form"
)

const (
	pagesPrompt   = "Quantas páginas tem o livro? Envie apenas o número."
	bindingPrompt = "Marque a encadernação e toque em Calcular."
	noPapers      = "Nenhum papel disponível."
)

// paperSelect returns the paper selector, or the text to show when the
// catalog could not be loaded or is empty.
func (b *Bot) paperSelect() (form.Select, string) {
	sel, msg := form.PaperSelect(b.catalog)
	if msg != nil {
		return sel, msg.Text
	}
	if len(sel.Choices()) == 0 {
		return sel, noPapers
	}
	return sel, ""
}

func (b *Bot) handlePaperText(ctx context.Context, chatID int64, _ string) {
	sel, loadErr := b.paperSelect()
	if loadErr != "" {
		b.sendError(chatID, loadErr)
		return
	}
	b.sendKeyboard(chatID, "Escolha o papel pelos botões abaixo:", paperKeyboard(sel))
}

func (b *Bot) handleWeightText(ctx context.Context, chatID int64, _ string) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao processar a solicitação")
		return
	}
	sel := form.WeightSelect(b.catalog.Catalog, state.Paper)
	if sel.Disabled {
		b.handlePaperText(ctx, chatID, "")
		return
	}
	b.sendKeyboard(chatID, "Escolha a gramatura pelos botões abaixo:", weightKeyboard(sel))
}

// handlePaperSelection stores the paper and always rebuilds the weight list,
// dropping any weight chosen for the previous paper.
func (b *Bot) handlePaperSelection(ctx context.Context, chatID int64, value string) {
	if !b.catalog.OK() {
		b.sendError(chatID, form.CatalogLoadError)
		return
	}

	index, err := strconv.Atoi(value)
	if err != nil {
		b.logger.Warn("Invalid paper callback",
			zap.Int64("chat_id", chatID),
			zap.String("value", value))
		return
	}

	paper, ok := b.catalog.Catalog.PaperAt(index)
	if !ok {
		b.sendError(chatID, "Papel não encontrado. Use /calcular para recomeçar.")
		return
	}

	sel := form.WeightSelect(b.catalog.Catalog, paper.Name)
	step := StepWeightSelection
	if sel.Disabled {
		step = StepPaperSelection
	}

	_, err = b.state.Update(ctx, chatID, func(s *FormState) {
		s.Paper = paper.Name
		s.Weight = ""
		s.Step = step
	})
	if err != nil {
		b.logger.Error("Failed to save paper selection",
			zap.Int64("chat_id", chatID),
			zap.String("paper", paper.Name),
			zap.Error(err))
		b.sendError(chatID, "Erro ao salvar o papel")
		return
	}

	b.logger.Info("Paper selected",
		zap.Int64("chat_id", chatID),
		zap.String("paper", paper.Name))

	if sel.Disabled {
		b.sendText(chatID, paper.Name+": "+sel.Options[0].Text)
		return
	}

	b.sendKeyboard(chatID, paper.Name+"\n"+sel.Options[0].Text+":", weightKeyboard(sel))
}

func (b *Bot) handleWeightSelection(ctx context.Context, chatID int64, value string) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao processar a solicitação")
		return
	}

	index, err := strconv.Atoi(value)
	if err != nil {
		b.logger.Warn("Invalid weight callback",
			zap.Int64("chat_id", chatID),
			zap.String("value", value))
		return
	}

	choices := form.WeightSelect(b.catalog.Catalog, state.Paper).Choices()
	if index < 0 || index >= len(choices) {
		b.sendError(chatID, "Gramatura não encontrada. Escolha o papel novamente.")
		return
	}
	weight := choices[index]

	state.Weight = weight.Value
	state.Step = StepPageCount
	if err := b.state.Save(ctx, chatID, state); err != nil {
		b.logger.Error("Failed to save weight selection",
			zap.Int64("chat_id", chatID),
			zap.String("weight", weight.Value),
			zap.Error(err))
		b.sendError(chatID, "Erro ao salvar a gramatura")
		return
	}

	b.sendText(chatID, state.Paper+" "+weight.Text+"\n"+pagesPrompt)
}

// handlePageCount keeps the text as typed. It is parsed only on submit, so a
// bad value surfaces as the incomplete form message.
func (b *Bot) handlePageCount(ctx context.Context, chatID int64, text string) {
	state, err := b.state.Update(ctx, chatID, func(s *FormState) {
		s.Pages = strings.TrimSpace(text)
		s.Step = StepBindingSelection
	})
	if err != nil {
		b.logger.Error("Failed to save page count",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao salvar a quantidade de páginas")
		return
	}

	b.sendKeyboard(chatID, bindingPrompt, bindingKeyboard(state))
}

func (b *Bot) handleBindingToggle(ctx context.Context, chatID int64, messageID int, binding string) {
	var known bool
	state, err := b.state.Update(ctx, chatID, func(s *FormState) {
		known = s.Toggle(binding)
	})
	if err != nil {
		b.logger.Error("Failed to save binding",
			zap.Int64("chat_id", chatID),
			zap.String("binding", binding),
			zap.Error(err))
		b.sendError(chatID, "Erro ao salvar a encadernação")
		return
	}
	if !known {
		b.logger.Warn("Unknown binding",
			zap.Int64("chat_id", chatID),
			zap.String("binding", binding))
		return
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, bindingKeyboard(state))
	if _, err := b.api.Request(edit); err != nil {
		b.logger.Error("Failed to update binding keyboard",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// handleCalculate submits whatever the chat has filled in. The state is kept
// so the user can change one field and calculate again.
func (b *Bot) handleCalculate(ctx context.Context, chatID int64) {
	allowed, err := b.limiter.Allow(ctx, chatID, actionCalculate)
	if err != nil {
		b.logger.Warn("Rate limiter unavailable",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	} else if !allowed {
		b.sendError(chatID, "Muitos cálculos em pouco tempo. Aguarde um instante.")
		return
	}

	if !b.catalog.OK() {
		b.sendError(chatID, form.CatalogLoadError)
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao processar a solicitação")
		return
	}

	msg := form.Submit(b.catalog.Catalog, state.Values())
	if msg.IsError() {
		b.sendError(chatID, msg.Text)
		return
	}

	b.logger.Info("Spine calculated",
		zap.Int64("chat_id", chatID),
		zap.String("paper", state.Paper),
		zap.String("weight", state.Weight),
		zap.String("pages", state.Pages),
		zap.Float64("spine_mm", msg.Result.SpineWidthMM))

	b.sendKeyboard(chatID, "✅ "+msg.Text, restartKeyboard())
}

func cutCallback(data string) (prefix, value string, found bool) {
	return strings.Cut(data, ":")
}
