package handlers

import (
	"errors"

	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
)

// userMessage turns an error into text for the chat
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return "⚠️ Что-то пошло не так. Попробуйте еще раз."
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		switch appErr.Code {
		case apperrors.CodeEmptyQuery:
			return "Введите название продукта для поиска"
		case apperrors.CodeNoMatches:
			return "😕 Ничего не найдено. Попробуйте другой запрос."
		case apperrors.CodeInvalidQuantity:
			if limit, ok := appErr.Context["limit"].(float64); ok {
				return "Слишком много порций: можно не больше " + formatNumber(limit)
			}
			return "Неверное количество. Используйте шаг 0.5 (например: 1 или 1.5)"
		case apperrors.CodeInvalidSection:
			return "Неизвестный прием пищи"
		}
		return appErr.Message
	case apperrors.ErrorTypeTransport:
		return "⚠️ Сервис временно недоступен. Данные не изменены, попробуйте позже."
	case apperrors.ErrorTypeUnauthenticated:
		return "🔒 Доступ к дневнику питания истек. Обратитесь к администратору бота."
	case apperrors.ErrorTypeNotFound:
		return "Запись не найдена, возможно она уже удалена"
	case apperrors.ErrorTypeConflict:
		if appErr.Code == apperrors.CodeDayStale {
			return "⚠️ Выбранный день не загрузился, изменения не сохранены. Откройте день заново."
		}
		return "⏳ Эта запись еще обновляется, подождите немного"
	case apperrors.ErrorTypeNotice:
		if floor, ok := appErr.Context["floor"].(string); ok {
			return "ℹ️ Нельзя перейти к дате раньше регистрации (" + floor + ")"
		}
		return "ℹ️ " + appErr.Message
	}
	return "⚠️ Что-то пошло не так. Попробуйте еще раз."
}
