package bot

import (
	"context"

	"go.uber.org/zap"
)

const helpText = `📐 Calculadora de lombada

1. Escolha o tipo de papel
2. Escolha a gramatura
3. Envie a quantidade de páginas
4. Marque a encadernação e toque em Calcular

A lombada é a quantidade de páginas dividida pelo valor base da gramatura, mais um acréscimo da encadernação: Cartonado 4 mm, Costurado 1 mm, Fresado 0 mm.

Comandos:
/calcular - novo cálculo
/cancelar - descarta o cálculo em andamento
/ajuda - esta mensagem`

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		b.handleStart(ctx, chatID)
	case "calcular":
		b.startForm(ctx, chatID)
	case "cancelar":
		b.handleCancel(ctx, chatID)
	case "ajuda", "help":
		b.sendText(chatID, helpText)
	case "exportar":
		b.handleExport(ctx, chatID)
	default:
		b.sendError(chatID, "Comando desconhecido. Use /ajuda para ver os comandos.")
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	b.sendText(chatID, "Olá! Eu calculo a largura da lombada do seu livro.")
	b.startForm(ctx, chatID)
}

// startForm resets the chat to an empty form and offers the paper list.
func (b *Bot) startForm(ctx context.Context, chatID int64) {
	sel, loadErr := b.paperSelect()
	if loadErr != "" {
		b.sendError(chatID, loadErr)
		return
	}

	if err := b.state.Save(ctx, chatID, FormState{Step: StepPaperSelection}); err != nil {
		b.logger.Error("Failed to reset form state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao iniciar o cálculo")
		return
	}

	b.sendKeyboard(chatID, sel.Options[0].Text+":", paperKeyboard(sel))
}

// handleCancel drops the chat's form state.
func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear form state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao cancelar o cálculo")
		return
	}

	b.sendText(chatID, "Cálculo cancelado. Use /calcular para começar de novo.")
}

func (b *Bot) handleDefault(ctx context.Context, chatID int64) {
	b.sendText(chatID, "Use /calcular para começar um novo cálculo ou /ajuda para instruções.")
}
