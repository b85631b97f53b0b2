// Package renewal содержит чистые функции жизненного цикла подписки:
// нормализацию полей, вычисление даты продления по частоте платежей
// и вывод статуса "expired". Функции не обращаются к хранилищу,
// сервисный слой применяет их перед каждой записью.
package renewal

import (
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// renewalPeriods задает смещение даты продления в днях для каждой частоты.
var renewalPeriods = map[string]int{
	models.FrequencyDaily:   1,
	models.FrequencyWeekly:  7,
	models.FrequencyMonthly: 30,
	models.FrequencyYearly:  365,
}

// Day усекает момент времени до начала календарного дня.
// Все сравнения дат в пакете выполняются с точностью до дня,
// чтобы расхождение часов в пределах суток не меняло результата.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Normalize приводит запись к каноническому виду перед валидацией:
// категория — в нижний регистр, строковые поля без краевых пробелов,
// пустые currency и status получают значения по умолчанию.
func Normalize(s *models.Subscription) {
	s.Name = strings.TrimSpace(s.Name)
	s.PaymentMethod = strings.TrimSpace(s.PaymentMethod)
	s.Category = strings.ToLower(strings.TrimSpace(s.Category))
	s.Frequency = strings.TrimSpace(s.Frequency)
	if s.Currency == "" {
		s.Currency = models.CurrencyUSD
	}
	if s.Status == "" {
		s.Status = models.StatusActive
	}
}

// DeriveRenewalDate заполняет дату продления, если она не задана:
// start_date плюс табличное смещение по частоте. Явно заданная дата
// никогда не переопределяется, даже если не согласуется с частотой.
// Неизвестная частота на этом шаге — фатальная ошибка валидации.
func DeriveRenewalDate(s *models.Subscription) error {
	if !s.RenewalDate.IsZero() {
		return nil
	}
	days, ok := renewalPeriods[s.Frequency]
	if !ok {
		return apperr.Validationf("invalid frequency %q for subscription", s.Frequency)
	}
	s.RenewalDate = Day(s.StartDate).AddDate(0, 0, days)
	return nil
}

// DeriveStatus принудительно переводит запись в статус expired, если
// календарный день даты продления строго раньше текущего календарного дня.
// Выполняется при каждом сохранении после DeriveRenewalDate и идемпотентна.
func DeriveStatus(s *models.Subscription, now time.Time) {
	if Day(s.RenewalDate).Before(Day(now)) {
		s.Status = models.StatusExpired
	}
}
