package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lombada-bot/internal/form"
	"lombada-bot/internal/storage"
)

// handleExport sends the loaded catalog as a spreadsheet to admins.
func (b *Bot) handleExport(_ context.Context, chatID int64) {
	if !b.cfg.IsAdmin(chatID) {
		b.logger.Warn("Export requested by non-admin", zap.Int64("chat_id", chatID))
		b.sendError(chatID, "Comando disponível apenas para administradores.")
		return
	}

	if !b.catalog.OK() {
		b.sendError(chatID, form.CatalogLoadError)
		return
	}

	data, err := storage.CatalogSpreadsheet(b.catalog.Catalog)
	if err != nil {
		b.logger.Error("Failed to build catalog spreadsheet",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao gerar a planilha")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  storage.CatalogFileName(b.now()),
		Bytes: data,
	})
	doc.Caption = "📊 Catálogo de papéis e gramaturas"

	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("Failed to send catalog spreadsheet",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao enviar a planilha")
		return
	}

	b.logger.Info("Catalog exported", zap.Int64("chat_id", chatID))
}
